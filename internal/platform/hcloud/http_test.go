package hcloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"

	"github.com/imamik/inception/internal/config"
)

// testServer creates an httptest server that can be used to mock Hetzner Cloud API responses.
type testServer struct {
	server *httptest.Server
	mux    *http.ServeMux
}

// newTestServer creates a new test server for mocking the Hetzner Cloud API.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return &testServer{
		server: server,
		mux:    mux,
	}
}

// client returns an hcloud.Client configured to use the test server.
func (ts *testServer) client() *hcloud.Client {
	return hcloud.NewClient(
		hcloud.WithToken("test-token"),
		hcloud.WithEndpoint(ts.server.URL),
	)
}

// provisioner returns a Provisioner configured to use the test server.
func (ts *testServer) provisioner(opts ...ProvisionerOption) *Provisioner {
	opts = append([]ProvisionerOption{
		WithHCloudClient(ts.client()),
		WithTimeouts(config.TestTimeouts()),
	}, opts...)
	return NewProvisioner("test-token", opts...)
}

// handleFunc registers a handler for a specific path.
func (ts *testServer) handleFunc(pattern string, handler http.HandlerFunc) {
	ts.mux.HandleFunc(pattern, handler)
}

// jsonResponse writes a JSON response with the given status code and body.
func jsonResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// errorResponse writes an hcloud API error body.
func errorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	jsonResponse(w, statusCode, schema.ErrorResponse{
		Error: schema.Error{Code: code, Message: message},
	})
}

// recorder captures request bodies per path.
type recorder struct {
	mu     sync.Mutex
	bodies map[string][]map[string]any
}

func newRecorder() *recorder {
	return &recorder{bodies: map[string][]map[string]any{}}
}

func (r *recorder) record(req *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(req.Body).Decode(&body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bodies[req.URL.Path] = append(r.bodies[req.URL.Path], body)
}

func (r *recorder) get(path string) []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[path]
}

var successAction = schema.Action{ID: 1, Status: "success", Progress: 100}

// registerCreateDependencies mocks the lookups performed before a server create.
func (ts *testServer) registerCreateDependencies() {
	ts.handleFunc("/server_types", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerTypeListResponse{
			ServerTypes: []schema.ServerType{{ID: 1, Name: "cx22", Architecture: "x86"}},
		})
	})
	ts.handleFunc("/images", func(w http.ResponseWriter, _ *http.Request) {
		name := "ubuntu-22.04"
		jsonResponse(w, http.StatusOK, schema.ImageListResponse{
			Images: []schema.Image{{ID: 10, Name: &name, Type: "system", Architecture: "x86", Status: "available"}},
		})
	})
	ts.handleFunc("/ssh_keys", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "ops" {
			jsonResponse(w, http.StatusOK, schema.SSHKeyListResponse{
				SSHKeys: []schema.SSHKey{{ID: 20, Name: "ops"}},
			})
			return
		}
		jsonResponse(w, http.StatusOK, schema.SSHKeyListResponse{SSHKeys: []schema.SSHKey{}})
	})
	ts.handleFunc("/firewalls", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("name") == "default" {
			jsonResponse(w, http.StatusOK, schema.FirewallListResponse{
				Firewalls: []schema.Firewall{{ID: 30, Name: "default"}},
			})
			return
		}
		jsonResponse(w, http.StatusOK, schema.FirewallListResponse{Firewalls: []schema.Firewall{}})
	})
	ts.handleFunc("/locations", func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "fsn1" || name == "nbg1" {
			jsonResponse(w, http.StatusOK, schema.LocationListResponse{
				Locations: []schema.Location{{Name: name}},
			})
			return
		}
		jsonResponse(w, http.StatusOK, schema.LocationListResponse{Locations: []schema.Location{}})
	})
}

func background() context.Context {
	return context.Background()
}

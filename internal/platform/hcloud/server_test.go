package hcloud

import (
	"net/http"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/inception/internal/platform"
)

func TestProvisioner_CreateInstance(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.registerCreateDependencies()
	rec := newRecorder()

	ts.handleFunc("/servers", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		rec.record(r)
		jsonResponse(w, http.StatusCreated, schema.ServerCreateResponse{
			Server: schema.Server{ID: 42, Name: "demo-gateway"},
			Action: successAction,
		})
	})

	p := ts.provisioner(WithLocation("fsn1"), WithLabels(map[string]string{"inception.io/cluster": "demo"}))

	id, err := p.CreateInstance(background(), platform.CreateOpts{
		Name:           "demo-gateway",
		Image:          "ubuntu-22.04",
		Flavor:         "cx22",
		KeyName:        "ops",
		SecurityGroups: []string{"default"},
		UserData:       "#cloud-config\n",
		Labels:         map[string]string{"inception.io/role": "gateway"},
	})
	require.NoError(t, err)
	assert.Equal(t, "42", id)

	bodies := rec.get("/servers")
	require.Len(t, bodies, 1)
	body := bodies[0]
	assert.Equal(t, "demo-gateway", body["name"])
	assert.Equal(t, "#cloud-config\n", body["user_data"])
	assert.Equal(t, "fsn1", body["location"])
	assert.Len(t, body["ssh_keys"], 1)
	assert.Equal(t, map[string]any{
		"inception.io/cluster": "demo",
		"inception.io/role":    "gateway",
	}, body["labels"])
	assert.Len(t, body["firewalls"], 1)
}

func TestProvisioner_CreateInstance_MissingDependencies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    platform.CreateOpts
		wantErr string
	}{
		{
			name:    "unknown ssh key",
			opts:    platform.CreateOpts{Name: "n", Image: "ubuntu-22.04", Flavor: "cx22", KeyName: "nobody"},
			wantErr: "ssh key not found: nobody",
		},
		{
			name:    "unknown security group",
			opts:    platform.CreateOpts{Name: "n", Image: "ubuntu-22.04", Flavor: "cx22", SecurityGroups: []string{"web"}},
			wantErr: "security group not found: web",
		},
		{
			name:    "unknown location",
			opts:    platform.CreateOpts{Name: "n", Image: "ubuntu-22.04", Flavor: "cx22", Location: "mars1"},
			wantErr: "location not found: mars1",
		},
		{
			name:    "missing image",
			opts:    platform.CreateOpts{Name: "n", Flavor: "cx22"},
			wantErr: "image is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ts := newTestServer(t)
			ts.registerCreateDependencies()
			ts.handleFunc("/servers", func(_ http.ResponseWriter, _ *http.Request) {
				t.Error("server create must not be attempted")
			})

			_, err := ts.provisioner().CreateInstance(background(), tt.opts)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProvisioner_CreateInstance_InvalidInputNotRetried(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.registerCreateDependencies()
	calls := 0
	ts.handleFunc("/servers", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		errorResponse(w, http.StatusUnprocessableEntity, "invalid_input", "bad user data")
	})

	_, err := ts.provisioner().CreateInstance(background(), platform.CreateOpts{
		Name: "demo-worker1", Image: "ubuntu-22.04", Flavor: "cx22",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not retrying")
	assert.Equal(t, 1, calls)
}

func TestProvisioner_GetInstance(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.handleFunc("/servers/7", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{
			Server: schema.Server{
				ID:     7,
				Name:   "demo-worker1",
				Status: "running",
				PublicNet: schema.ServerPublicNet{
					IPv4: schema.ServerPublicNetIPv4{IP: "203.0.113.7"},
					IPv6: schema.ServerPublicNetIPv6{IP: "2001:db8::/64"},
				},
				Labels: map[string]string{"inception.io/role": "worker"},
			},
		})
	})
	ts.handleFunc("/servers/8", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{
			Server: schema.Server{ID: 8, Name: "demo-worker2", Status: "initializing"},
		})
	})
	ts.handleFunc("/servers/9", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusNotFound, "not_found", "server not found")
	})

	p := ts.provisioner()

	inst, err := p.GetInstance(background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "demo-worker1", inst.Name)
	assert.Equal(t, "running", inst.Status)
	assert.Equal(t, "203.0.113.7", inst.IPAddress)
	assert.Equal(t, "203.0.113.7", inst.Addresses["public"])
	assert.Contains(t, inst.Addresses, "ipv6")
	assert.Equal(t, "worker", inst.Labels["inception.io/role"])

	inst, err = p.GetInstance(background(), "8")
	require.NoError(t, err)
	assert.Empty(t, inst.IPAddress)

	_, err = p.GetInstance(background(), "9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server not found")

	_, err = p.GetInstance(background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server id")
}

func TestProvisioner_GetInstance_RetriesRateLimit(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	calls := 0
	ts.handleFunc("/servers/7", func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			errorResponse(w, http.StatusTooManyRequests, "rate_limit_exceeded", "slow down")
			return
		}
		jsonResponse(w, http.StatusOK, schema.ServerGetResponse{Server: schema.Server{ID: 7, Name: "demo-gateway"}})
	})

	inst, err := ts.provisioner().GetInstance(background(), "7")
	require.NoError(t, err)
	assert.Equal(t, "demo-gateway", inst.Name)
	assert.GreaterOrEqual(t, calls, 2)
}

func TestProvisioner_ListInstances(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.handleFunc("/servers", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, schema.ServerListResponse{
			Servers: []schema.Server{
				{ID: 1, Name: "demo-gateway"},
				{ID: 2, Name: "other-gateway"},
			},
		})
	})

	instances, err := ts.provisioner().ListInstances(background())
	require.NoError(t, err)
	require.Len(t, instances, 2)
	assert.Equal(t, "1", instances[0].ID)
	assert.Equal(t, "other-gateway", instances[1].Name)
}

func TestProvisioner_DeleteInstance(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	deleted := false
	ts.handleFunc("/servers/789", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			jsonResponse(w, http.StatusOK, schema.ServerGetResponse{Server: schema.Server{ID: 789, Name: "demo-worker1"}})
		case http.MethodDelete:
			deleted = true
			jsonResponse(w, http.StatusOK, schema.ServerDeleteResponse{Action: successAction})
		}
	})
	ts.handleFunc("/servers/790", func(w http.ResponseWriter, _ *http.Request) {
		errorResponse(w, http.StatusNotFound, "not_found", "server not found")
	})

	p := ts.provisioner()

	require.NoError(t, p.DeleteInstance(background(), "789"))
	assert.True(t, deleted)

	require.NoError(t, p.DeleteInstance(background(), "790"), "deleting a missing server succeeds")
}

func TestProvisioner_DeleteInstance_Failure(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.handleFunc("/servers/5", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			jsonResponse(w, http.StatusOK, schema.ServerGetResponse{Server: schema.Server{ID: 5, Name: "demo-worker1"}})
			return
		}
		errorResponse(w, http.StatusForbidden, "forbidden", "delete protection enabled")
	})

	err := ts.provisioner().DeleteInstance(background(), "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete protection")
}

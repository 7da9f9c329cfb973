package hcloud

import (
	"net/http"
	"testing"

	"github.com/hetznercloud/hcloud-go/v2/hcloud/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func int64Ptr(v int64) *int64 { return &v }

func floatingIPList() schema.FloatingIPListResponse {
	return schema.FloatingIPListResponse{
		FloatingIPs: []schema.FloatingIP{
			{ID: 500, IP: "198.51.100.10", Type: "ipv4", Server: int64Ptr(42), HomeLocation: schema.Location{Name: "fsn1"}},
			{ID: 501, IP: "198.51.100.11", Type: "ipv4", HomeLocation: schema.Location{Name: "nbg1"}},
		},
	}
}

func TestProvisioner_CreateFloatingIP(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.registerCreateDependencies()
	rec := newRecorder()
	ts.handleFunc("/floating_ips", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		jsonResponse(w, http.StatusCreated, schema.FloatingIPCreateResponse{
			FloatingIP: schema.FloatingIP{ID: 500, IP: "198.51.100.10", Type: "ipv4"},
		})
	})

	p := ts.provisioner(WithLocation("nbg1"))

	ip, err := p.CreateFloatingIP(background(), "fsn1")
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.10", ip)

	_, err = p.CreateFloatingIP(background(), "")
	require.NoError(t, err)

	bodies := rec.get("/floating_ips")
	require.Len(t, bodies, 2)
	assert.Equal(t, "fsn1", bodies[0]["home_location"])
	assert.Equal(t, "nbg1", bodies[1]["home_location"], "empty pool falls back to the provisioner location")
	assert.Equal(t, "ipv4", bodies[0]["type"])
}

func TestProvisioner_CreateFloatingIP_NoPool(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	_, err := ts.provisioner().CreateFloatingIP(background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool or location is required")
}

func TestProvisioner_AssociateFloatingIP(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	rec := newRecorder()
	ts.handleFunc("/floating_ips", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, floatingIPList())
	})
	ts.handleFunc("/floating_ips/501/actions/assign", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		jsonResponse(w, http.StatusCreated, schema.FloatingIPActionAssignResponse{Action: successAction})
	})

	p := ts.provisioner()

	require.NoError(t, p.AssociateFloatingIP(background(), "42", "198.51.100.11"))
	bodies := rec.get("/floating_ips/501/actions/assign")
	require.Len(t, bodies, 1)
	assert.Equal(t, float64(42), bodies[0]["server"])

	err := p.AssociateFloatingIP(background(), "42", "192.0.2.99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floating IP not found")
}

func TestProvisioner_ListFloatingIPs(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	ts.handleFunc("/floating_ips", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, floatingIPList())
	})

	fips, err := ts.provisioner().ListFloatingIPs(background())
	require.NoError(t, err)
	require.Len(t, fips, 2)

	assert.Equal(t, "198.51.100.10", fips[0].IP)
	assert.Equal(t, "42", fips[0].InstanceID)
	assert.Equal(t, "fsn1", fips[0].Pool)
	assert.Empty(t, fips[1].InstanceID)
}

func TestProvisioner_DeleteFloatingIP(t *testing.T) {
	t.Parallel()

	ts := newTestServer(t)
	deleted := map[string]bool{}
	ts.handleFunc("/floating_ips", func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, floatingIPList())
	})
	ts.handleFunc("/floating_ips/500", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted["500"] = true
			w.WriteHeader(http.StatusNoContent)
		}
	})

	p := ts.provisioner()

	require.NoError(t, p.DeleteFloatingIP(background(), "198.51.100.10"))
	assert.True(t, deleted["500"])

	require.NoError(t, p.DeleteFloatingIP(background(), "192.0.2.99"), "unknown address is already gone")
}

package naming

import "testing"

func TestNamingFunctions(t *testing.T) {
	prefix := "lab"

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "Gateway", got: Gateway(prefix), expected: "lab-gateway"},
		{name: "ConfigServer", got: ConfigServer(prefix), expected: "lab-chefserver"},
		{name: "SingleController", got: Controller(prefix, 1, 1), expected: "lab-controller"},
		{name: "SecondOfTwoControllers", got: Controller(prefix, 2, 2), expected: "lab-controller2"},
		{name: "Worker1", got: Worker(prefix, 1), expected: "lab-worker1"},
		{name: "Worker5", got: Worker(prefix, 5), expected: "lab-worker5"},
		{name: "ClusterPrefix", got: ClusterPrefix(prefix), expected: "lab-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}

func TestBelongsTo(t *testing.T) {
	if !BelongsTo("lab-worker1", "lab") {
		t.Error("expected lab-worker1 to belong to lab")
	}
	if BelongsTo("labx-worker1", "lab") {
		t.Error("labx-worker1 must not belong to lab")
	}
	if BelongsTo("lab", "lab") {
		t.Error("bare prefix is not a node name")
	}
}

func TestParseHostname(t *testing.T) {
	tests := []struct {
		in         string
		wantPrefix string
		wantRole   string
		wantOK     bool
	}{
		{in: "lab-gateway", wantPrefix: "lab", wantRole: "gateway", wantOK: true},
		{in: "lab-worker3", wantPrefix: "lab", wantRole: "worker3", wantOK: true},
		{in: "lab", wantOK: false},
		{in: "-gateway", wantOK: false},
		{in: "lab-", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			prefix, role, ok := ParseHostname(tt.in)
			if ok != tt.wantOK || prefix != tt.wantPrefix || role != tt.wantRole {
				t.Errorf("ParseHostname(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.in, prefix, role, ok, tt.wantPrefix, tt.wantRole, tt.wantOK)
			}
		})
	}
}

func TestParseHostname_RoundTrip(t *testing.T) {
	for _, name := range []string{Gateway("c1"), ConfigServer("c1"), Controller("c1", 1, 1), Worker("c1", 2)} {
		prefix, _, ok := ParseHostname(name)
		if !ok || prefix != "c1" {
			t.Errorf("hostname %q did not parse back to prefix c1", name)
		}
	}
}

package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/inception/internal/platform"
)

// MockCloudProvisioner is a testify mock of provisioning.CloudProvisioner.
type MockCloudProvisioner struct {
	mock.Mock
}

// CreateInstance records the call.
func (m *MockCloudProvisioner) CreateInstance(ctx context.Context, opts platform.CreateOpts) (string, error) {
	args := m.Called(ctx, opts)
	return args.String(0), args.Error(1)
}

// GetInstance records the call.
func (m *MockCloudProvisioner) GetInstance(ctx context.Context, id string) (*platform.Instance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*platform.Instance), args.Error(1)
}

// ListInstances records the call.
func (m *MockCloudProvisioner) ListInstances(ctx context.Context) ([]*platform.Instance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*platform.Instance), args.Error(1)
}

// DeleteInstance records the call.
func (m *MockCloudProvisioner) DeleteInstance(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// CreateFloatingIP records the call.
func (m *MockCloudProvisioner) CreateFloatingIP(ctx context.Context, pool string) (string, error) {
	args := m.Called(ctx, pool)
	return args.String(0), args.Error(1)
}

// AssociateFloatingIP records the call.
func (m *MockCloudProvisioner) AssociateFloatingIP(ctx context.Context, instanceID, ip string) error {
	return m.Called(ctx, instanceID, ip).Error(0)
}

// ListFloatingIPs records the call.
func (m *MockCloudProvisioner) ListFloatingIPs(ctx context.Context) ([]*platform.FloatingIP, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*platform.FloatingIP), args.Error(1)
}

// DeleteFloatingIP records the call.
func (m *MockCloudProvisioner) DeleteFloatingIP(ctx context.Context, ip string) error {
	return m.Called(ctx, ip).Error(0)
}

// MockRemoteExecutor is a testify mock of provisioning.RemoteExecutor.
type MockRemoteExecutor struct {
	mock.Mock
}

// Run records the call.
func (m *MockRemoteExecutor) Run(ctx context.Context, target platform.Target, command string, opts platform.RunOptions) (platform.Output, error) {
	args := m.Called(ctx, target, command, opts)
	return args.Get(0).(platform.Output), args.Error(1)
}

// RunLocal records the call.
func (m *MockRemoteExecutor) RunLocal(ctx context.Context, command string, opts platform.RunOptions) (platform.Output, error) {
	args := m.Called(ctx, command, opts)
	return args.Get(0).(platform.Output), args.Error(1)
}

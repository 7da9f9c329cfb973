// Package testing provides test utilities, builders and fakes shared by the
// package tests.
//
//   - ConfigBuilder: fluent builder for valid test configurations
//   - FakeCloud: in-memory CloudProvisioner with failure hooks
//   - FakeExecutor: RemoteExecutor recording every command
//   - FakeClock: manual clock for readiness polling
//   - MockCloudProvisioner, MockRemoteExecutor: testify mocks
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithPrefix("demo").
//	    WithWorkers(3).
//	    Build()
//
//	cloud := testing.NewFakeCloud()
//	exec := testing.NewFakeExecutor()
package testing

// Package testing provides test utilities, builders, and fakes shared
// across unit tests:
//   - ConfigBuilder: fluent builder for test configurations
//   - FakeProvisioner: in-memory hypervisor with failure injection
//
// Usage:
//
//	cfg := testing.NewConfigBuilder().
//	    WithFleet("homelab").
//	    WithCount(3).
//	    Build()
//
//	prov := testing.NewFakeProvisioner(9000)
package testing

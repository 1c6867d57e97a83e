// Package storetest provides a conformance test suite for book store
// implementations.
//
// All store backends (memory, badger, sqlite) should pass these tests.
// The suite verifies that every implementation satisfies the store.Store
// behavioral contract, catching regressions when backend code changes.
//
// Usage:
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) store.Store {
//	        return memory.New()
//	    })
//	}
//
// The factory function receives *testing.T so it can call t.TempDir() for
// stores that need filesystem paths (e.g., badger) and t.Cleanup for
// teardown.
package storetest

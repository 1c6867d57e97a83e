package memory_test

import (
	"testing"

	"github.com/pagekeep/pagekeep/pkg/store"
	"github.com/pagekeep/pagekeep/pkg/store/memory"
	"github.com/pagekeep/pagekeep/pkg/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) store.Store {
		return memory.New()
	})
}

func TestClosedStoreFails(t *testing.T) {
	s := memory.New()
	if err := s.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	ctx := t.Context()

	if _, err := s.ListMetadata(ctx); err == nil {
		t.Error("ListMetadata() on closed store should fail")
	}
	if err := s.Healthcheck(ctx); err == nil {
		t.Error("Healthcheck() on closed store should fail")
	}
}

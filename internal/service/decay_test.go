package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunDecay(t *testing.T) {
	memories := newMockMemoryStore()
	svc := NewDecayService(memories, zap.NewNop())

	svc.RunDecay(context.Background())

	if memories.decayed != 1 {
		t.Fatalf("expected one decay pass, got %d", memories.decayed)
	}
	if memories.pruned != 1 {
		t.Fatalf("expected one prune pass, got %d", memories.pruned)
	}
}

func TestRunDecayAbsorbsStoreErrors(t *testing.T) {
	memories := newMockMemoryStore()
	memories.decayErr = errors.New("deadlock detected")
	svc := NewDecayService(memories, zap.NewNop())

	// Must not panic or propagate; the next scheduled pass retries.
	svc.RunDecay(context.Background())
}

func TestDecayServiceStartStop(t *testing.T) {
	memories := newMockMemoryStore()
	svc := NewDecayService(memories, zap.NewNop())
	svc.SetInterval(10 * time.Millisecond)

	svc.Start()
	time.Sleep(50 * time.Millisecond)
	svc.Stop()

	if memories.decayed == 0 {
		t.Fatal("expected at least one decay pass while running")
	}
}

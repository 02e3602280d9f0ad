package request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/richinex/midline/model"
)

func TestFindReusableExact(t *testing.T) {
	c := NewCoordinator()
	p := NewPending("const x = ", ";", nil)
	c.Add("const x = ", ";", p)

	got := c.FindReusable("const x = ", ";")
	if got != p {
		t.Fatalf("expected exact pending back, got %v", got)
	}
}

func TestFindReusableForwardExtension(t *testing.T) {
	c := NewCoordinator()
	p := NewPending("const x = ", ";", nil)
	c.Add("const x = ", ";", p)

	// User kept typing: the stored request still covers the query
	if got := c.FindReusable("const x = 4", ";"); got != p {
		t.Fatalf("expected forward-extension reuse, got %v", got)
	}

	// Reverse direction is not reused
	if got := c.FindReusable("const x", ";"); got != nil {
		t.Fatalf("backward query should miss, got %v", got)
	}
}

func TestFindReusableSuffixMismatch(t *testing.T) {
	c := NewCoordinator()
	c.Add("const x = ", ";", NewPending("const x = ", ";", nil))

	if got := c.FindReusable("const x = 4", "}"); got != nil {
		t.Fatalf("suffix mismatch should miss, got %v", got)
	}
}

func TestFindReusableLongestStoredPrefix(t *testing.T) {
	c := NewCoordinator()
	short := NewPending("const ", ";", nil)
	long := NewPending("const x = ", ";", nil)
	c.Add("const ", ";", short)
	c.Add("const x = ", ";", long)

	if got := c.FindReusable("const x = 42", ";"); got != long {
		t.Fatalf("expected the longest compatible stored prefix, got %v", got)
	}
}

func TestRemove(t *testing.T) {
	c := NewCoordinator()
	c.Add("abc", ";", NewPending("abc", ";", nil))
	c.Remove("abc", ";")

	if c.Len() != 0 {
		t.Fatalf("Len() = %d after remove, want 0", c.Len())
	}
	if got := c.FindReusable("abcdef", ";"); got != nil {
		t.Fatalf("removed request still reusable: %v", got)
	}
}

func TestCancelObsolete(t *testing.T) {
	c := NewCoordinator()
	diverged := NewPending("xyz", ";", nil)
	compatible := NewPending("abc", ";", nil)
	otherSuffix := NewPending("abcd", "}", nil)
	c.Add("xyz", ";", diverged)
	c.Add("abc", ";", compatible)
	c.Add("abcd", "}", otherSuffix)

	c.CancelObsolete("abcd", ";")

	if !diverged.Cancelled() {
		t.Error("diverged prefix should be cancelled")
	}
	if compatible.Cancelled() {
		t.Error("stored prefix of the query should be spared")
	}
	if !otherSuffix.Cancelled() {
		t.Error("different suffix should be cancelled")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want only the spared request", c.Len())
	}
}

func TestCancelObsoleteSparesBothDirections(t *testing.T) {
	c := NewCoordinator()
	longer := NewPending("abcdef", ";", nil)
	c.Add("abcdef", ";", longer)

	// Stored prefix extends the query: spared even though FindReusable
	// would not return it
	c.CancelObsolete("abcd", ";")

	if longer.Cancelled() {
		t.Error("stored extension of the query should be spared")
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestClear(t *testing.T) {
	c := NewCoordinator()
	a := NewPending("a", ";", nil)
	b := NewPending("b", "}", nil)
	c.Add("a", ";", a)
	c.Add("b", "}", b)

	c.Clear()

	if !a.Cancelled() || !b.Cancelled() {
		t.Error("clear should cancel everything")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestPendingResolveOnce(t *testing.T) {
	p := NewPending("a", ";", nil)
	want := &model.MatchResult{Text: "first"}
	p.Resolve(want, nil)
	p.Resolve(&model.MatchResult{Text: "second"}, errors.New("ignored"))

	got, err := p.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if got != want {
		t.Errorf("Wait returned %v, want first resolution", got)
	}
}

func TestPendingWaitRespectsContext(t *testing.T) {
	p := NewPending("a", ";", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait error = %v, want deadline exceeded", err)
	}
}

func TestPendingCancelFiresHook(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPending("a", ";", cancel)

	p.Cancel()

	if !p.Cancelled() {
		t.Error("Cancelled() should report true")
	}
	select {
	case <-ctx.Done():
	default:
		t.Error("cancellation hook did not fire")
	}
}

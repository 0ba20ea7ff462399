package device

import (
	"errors"
	"testing"
)

func TestStreamOrdered(t *testing.T) {
	s := NewStream()
	defer s.Close()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		if err := s.Enqueue(func() error {
			order = append(order, i)
			return nil
		}); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := s.Synchronize(); err != nil {
		t.Fatalf("synchronize: %v", err)
	}
	for i, got := range order {
		if got != i {
			t.Fatalf("task %d ran out of order (got %d)", i, got)
		}
	}
	if s.Launched() != 10 {
		t.Fatalf("launched = %d, want 10", s.Launched())
	}
}

func TestStreamStickyError(t *testing.T) {
	s := NewStream()
	defer s.Close()

	boom := errors.New("launch failed")
	ran := false
	_ = s.Enqueue(func() error { return boom })
	_ = s.Enqueue(func() error { ran = true; return nil })

	if err := s.Synchronize(); !errors.Is(err, boom) {
		t.Fatalf("synchronize err = %v, want %v", err, boom)
	}
	if ran {
		t.Fatal("work after a failed launch should not run")
	}
	// The error stays sticky across further synchronization.
	if err := s.Synchronize(); !errors.Is(err, boom) {
		t.Fatalf("second synchronize err = %v, want %v", err, boom)
	}
}

func TestStreamClosedEnqueue(t *testing.T) {
	s := NewStream()
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := s.Enqueue(func() error { return nil }); !errors.Is(err, ErrStreamClosed) {
		t.Fatalf("enqueue after close = %v, want ErrStreamClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("double close: %v", err)
	}
}

func TestArenaReuse(t *testing.T) {
	a := NewArena(0)

	b1, err := a.Acquire(1000)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if len(b1.Bytes()) < 1000 {
		t.Fatalf("buffer too small: %d", len(b1.Bytes()))
	}
	b1.Release()

	b2, err := a.Acquire(900) // same 256-byte bucket
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	st := a.Stats()
	if st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("stats = %+v, want 1 hit / 1 miss", st)
	}
	if &b2.Bytes()[0] != &b1.Bytes()[0] {
		t.Fatal("expected pooled buffer to be reused")
	}
}

func TestArenaLimit(t *testing.T) {
	a := NewArena(1024)

	b, err := a.Acquire(512)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := a.Acquire(1024); !errors.Is(err, ErrArenaExhausted) {
		t.Fatalf("over-limit acquire = %v, want ErrArenaExhausted", err)
	}
	b.Release()
	if _, err := a.Acquire(1024); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestViewAs(t *testing.T) {
	a := NewArena(0)
	buf, err := a.Acquire(64)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	type pair struct {
		Index int32
		Value float32
	}
	pairs, err := ViewAs[pair](buf, 8)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	pairs[7] = pair{Index: 3, Value: 1.5}
	if pairs[7].Index != 3 || pairs[7].Value != 1.5 {
		t.Fatalf("round trip failed: %+v", pairs[7])
	}

	if _, err := ViewAs[pair](buf, 100); err == nil {
		t.Fatal("oversized view should fail")
	}
	if got, err := ViewAs[pair](buf, 0); err != nil || got != nil {
		t.Fatalf("empty view = %v, %v", got, err)
	}
}

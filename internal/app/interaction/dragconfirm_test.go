package interaction

import (
	"testing"
	"time"
)

// Geometry used throughout: track 300, handle 100, so the handle travels 200.
// 80% of the travel is position 160. A zero delay keeps the counter
// assertions synchronous.
func newTestDrag(fired *int) *DragConfirm {
	return NewDragConfirm(300, 100, func() { *fired++ }, WithCompleteDelay(0))
}

func TestDragCompletesAtThreshold(t *testing.T) {
	fired := 0
	dc := newTestDrag(&fired)

	dc.Start()
	dc.Move(100)
	if dc.State() != DragActive {
		t.Fatalf("expected active mid-drag, got %v", dc.State())
	}
	dc.Move(160) // exactly 80%
	if dc.State() != DragCompleted {
		t.Fatalf("expected completion at threshold, got %v", dc.State())
	}
	if dc.Progress() != 100 {
		t.Fatalf("expected handle snapped to 100%%, got %v", dc.Progress())
	}
	if fired != 1 {
		t.Fatalf("expected one completion callback, got %d", fired)
	}
}

func TestDragJustBelowThresholdRebounds(t *testing.T) {
	fired := 0
	dc := newTestDrag(&fired)

	dc.Start()
	dc.Move(158) // 79%
	if dc.State() != DragActive {
		t.Fatalf("expected still active below threshold, got %v", dc.State())
	}
	dc.Release()

	if dc.State() != DragIdle {
		t.Fatalf("expected rebound to idle, got %v", dc.State())
	}
	if dc.Progress() != 0 {
		t.Fatalf("expected progress reset to 0, got %v", dc.Progress())
	}
	if fired != 0 {
		t.Fatal("callback must not fire on an incomplete drag")
	}
}

func TestDragClampsToTrack(t *testing.T) {
	dc := NewDragConfirm(300, 100, nil)
	dc.Start()
	dc.Move(-50)
	if dc.Progress() != 0 {
		t.Fatalf("expected clamp at 0, got %v", dc.Progress())
	}
	dc.Move(5000)
	if dc.Progress() != 100 {
		t.Fatalf("expected clamp at 100, got %v", dc.Progress())
	}
}

func TestDragIgnoresInputAfterCompletion(t *testing.T) {
	fired := 0
	dc := newTestDrag(&fired)

	dc.Start()
	dc.Move(200)
	if dc.State() != DragCompleted {
		t.Fatalf("expected completed, got %v", dc.State())
	}

	dc.Move(10)
	dc.Start()
	dc.Release()
	if dc.State() != DragCompleted || dc.Progress() != 100 {
		t.Fatal("completed control must ignore further input until Reset")
	}
	if fired != 1 {
		t.Fatalf("expected a single callback, got %d", fired)
	}

	dc.Reset()
	if dc.State() != DragIdle || dc.Progress() != 0 {
		t.Fatal("expected reset back to idle")
	}
	dc.Start()
	dc.Move(200)
	if fired != 2 {
		t.Fatal("control must be reusable after Reset")
	}
}

func TestDragMoveWithoutStartIsIgnored(t *testing.T) {
	dc := NewDragConfirm(300, 100, nil)
	dc.Move(200)
	if dc.State() != DragIdle || dc.Progress() != 0 {
		t.Fatal("move without an active drag must be ignored")
	}
}

func TestDragDefaultCompletionIsDelayed(t *testing.T) {
	fired := make(chan struct{})
	dc := NewDragConfirm(300, 100, func() { close(fired) })

	if dc.completeDelay != DefaultCompleteDelay {
		t.Fatalf("expected default delay %v, got %v", DefaultCompleteDelay, dc.completeDelay)
	}

	dc.Start()
	dc.Move(200)
	select {
	case <-fired:
		t.Fatal("callback must wait for the default delay")
	default:
	}
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback never fired after the default delay")
	}
}

func TestDragDelayedCompletion(t *testing.T) {
	fired := make(chan struct{})
	dc := NewDragConfirm(300, 100, func() { close(fired) }, WithCompleteDelay(20*time.Millisecond))

	dc.Start()
	dc.Move(200)
	if dc.State() != DragCompleted {
		t.Fatalf("expected completed, got %v", dc.State())
	}
	select {
	case <-fired:
		t.Fatal("callback must wait for the completion delay")
	default:
	}
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("callback never fired after the delay")
	}
}

func TestDragResetCancelsPendingCompletion(t *testing.T) {
	fired := make(chan struct{})
	dc := NewDragConfirm(300, 100, func() { close(fired) }, WithCompleteDelay(30*time.Millisecond))

	dc.Start()
	dc.Move(200)
	dc.Reset()

	select {
	case <-fired:
		t.Fatal("reset must cancel the pending callback")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestDragDegenerateGeometry(t *testing.T) {
	dc := NewDragConfirm(100, 100, nil)
	dc.Start()
	dc.Move(50)
	if dc.Progress() != 0 {
		t.Fatalf("zero travel must report zero progress, got %v", dc.Progress())
	}
}

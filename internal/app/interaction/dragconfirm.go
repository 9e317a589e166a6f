// Package interaction holds the state machines behind destructive-action
// confirmation surfaces. They are pure state: callers drive them with input
// events and read progress back out.
package interaction

import (
	"sync"
	"time"
)

// DragState enumerates the drag-to-confirm machine states.
type DragState int

const (
	// DragIdle means the handle is at rest at the start of the track.
	DragIdle DragState = iota
	// DragActive means the pointer is down and the handle tracks it.
	DragActive
	// DragCompleted means the threshold was crossed; input is ignored
	// until Reset.
	DragCompleted
)

// CompleteThreshold is the progress percentage at which the handle snaps to
// the end of the track and the confirm fires.
const CompleteThreshold = 80.0

// DefaultCompleteDelay is the pause between the handle snapping to the end of
// the track and the confirm callback firing, so the completed state is visible
// before the action runs.
const DefaultCompleteDelay = 350 * time.Millisecond

// DragConfirm is a slide-to-confirm control. Progress runs 0..100; crossing
// CompleteThreshold mid-drag completes immediately, releasing short of it
// rebounds to zero.
type DragConfirm struct {
	mu sync.Mutex

	trackWidth  float64
	handleWidth float64
	position    float64
	state       DragState

	onComplete    func()
	completeDelay time.Duration
	timer         *time.Timer
}

// DragOption configures a DragConfirm.
type DragOption func(*DragConfirm)

// WithCompleteDelay overrides DefaultCompleteDelay. Zero fires the callback
// synchronously, which tests rely on.
func WithCompleteDelay(d time.Duration) DragOption {
	return func(dc *DragConfirm) { dc.completeDelay = d }
}

// NewDragConfirm constructs the control for a track of the given geometry.
// onComplete may be nil. Widths are in the caller's layout units.
func NewDragConfirm(trackWidth, handleWidth float64, onComplete func(), opts ...DragOption) *DragConfirm {
	dc := &DragConfirm{
		trackWidth:    trackWidth,
		handleWidth:   handleWidth,
		onComplete:    onComplete,
		completeDelay: DefaultCompleteDelay,
	}
	for _, opt := range opts {
		opt(dc)
	}
	return dc
}

// maxPosition is the furthest the handle's leading edge can travel.
func (dc *DragConfirm) maxPosition() float64 {
	max := dc.trackWidth - dc.handleWidth
	if max < 0 {
		return 0
	}
	return max
}

// Start begins a drag. Ignored unless the control is idle.
func (dc *DragConfirm) Start() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.state != DragIdle {
		return
	}
	dc.state = DragActive
}

// Move tracks the pointer at pos along the track. Positions are clamped to
// the track; crossing the threshold completes the drag in place.
func (dc *DragConfirm) Move(pos float64) {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.state != DragActive {
		return
	}

	max := dc.maxPosition()
	if pos < 0 {
		pos = 0
	}
	if pos > max {
		pos = max
	}
	dc.position = pos

	if dc.progressLocked() >= CompleteThreshold {
		dc.completeLocked()
	}
}

// Release ends the drag. Short of the threshold the handle rebounds to the
// start; completion is handled in Move, so a release after completion is a
// no-op.
func (dc *DragConfirm) Release() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.state != DragActive {
		return
	}
	dc.state = DragIdle
	dc.position = 0
}

// Reset returns a completed control to idle so it can be used again.
func (dc *DragConfirm) Reset() {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.timer != nil {
		dc.timer.Stop()
		dc.timer = nil
	}
	dc.state = DragIdle
	dc.position = 0
}

// State reports the current machine state.
func (dc *DragConfirm) State() DragState {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.state
}

// Progress reports completion as a percentage in [0, 100].
func (dc *DragConfirm) Progress() float64 {
	dc.mu.Lock()
	defer dc.mu.Unlock()
	return dc.progressLocked()
}

func (dc *DragConfirm) progressLocked() float64 {
	max := dc.maxPosition()
	if max == 0 {
		return 0
	}
	ratio := dc.position / max
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return ratio * 100
}

// completeLocked snaps the handle to the end and arms the confirm callback.
func (dc *DragConfirm) completeLocked() {
	dc.state = DragCompleted
	dc.position = dc.maxPosition()

	if dc.onComplete == nil {
		return
	}
	if dc.completeDelay <= 0 {
		dc.onComplete()
		return
	}
	dc.timer = time.AfterFunc(dc.completeDelay, dc.onComplete)
}

package interaction

import (
	"context"
	"sync"
)

// ModalState enumerates the confirm-modal machine states.
type ModalState int

const (
	// ModalClosed means no decision is pending.
	ModalClosed ModalState = iota
	// ModalAwaiting means the modal is visible and waiting on the user.
	ModalAwaiting
	// ModalBusy means the confirmed action is running.
	ModalBusy
)

// ConfirmModal gates a destructive action behind an explicit yes/no choice.
// Confirm runs the action synchronously and closes the modal whatever the
// outcome; Cancel closes it without running anything.
type ConfirmModal struct {
	mu    sync.Mutex
	state ModalState
}

// NewConfirmModal constructs a closed modal.
func NewConfirmModal() *ConfirmModal { return &ConfirmModal{} }

// Open presents the decision. Ignored while a decision or action is already
// in flight.
func (m *ConfirmModal) Open() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ModalClosed {
		return
	}
	m.state = ModalAwaiting
}

// Confirm runs action and closes the modal. The action's error is returned
// to the caller untouched. Confirm on a closed or busy modal is a no-op.
func (m *ConfirmModal) Confirm(ctx context.Context, action func(ctx context.Context) error) error {
	m.mu.Lock()
	if m.state != ModalAwaiting {
		m.mu.Unlock()
		return nil
	}
	m.state = ModalBusy
	m.mu.Unlock()

	var err error
	if action != nil {
		err = action(ctx)
	}

	m.mu.Lock()
	m.state = ModalClosed
	m.mu.Unlock()
	return err
}

// Cancel dismisses the modal without running the action. Ignored while the
// action is in flight.
func (m *ConfirmModal) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != ModalAwaiting {
		return
	}
	m.state = ModalClosed
}

// State reports the current machine state.
func (m *ConfirmModal) State() ModalState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

package interaction

import (
	"context"
	"errors"
	"testing"
)

func TestModalConfirmRunsActionOnce(t *testing.T) {
	m := NewConfirmModal()
	m.Open()
	if m.State() != ModalAwaiting {
		t.Fatalf("expected awaiting, got %v", m.State())
	}

	calls := 0
	if err := m.Confirm(context.Background(), func(context.Context) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one invocation, got %d", calls)
	}
	if m.State() != ModalClosed {
		t.Fatalf("expected closed after confirm, got %v", m.State())
	}
}

func TestModalConfirmPropagatesError(t *testing.T) {
	m := NewConfirmModal()
	m.Open()

	wantErr := errors.New("boom")
	err := m.Confirm(context.Background(), func(context.Context) error { return wantErr })
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected action error, got %v", err)
	}
	if m.State() != ModalClosed {
		t.Fatal("modal must close even when the action fails")
	}
}

func TestModalCancelSkipsAction(t *testing.T) {
	m := NewConfirmModal()
	m.Open()
	m.Cancel()
	if m.State() != ModalClosed {
		t.Fatalf("expected closed after cancel, got %v", m.State())
	}

	calls := 0
	if err := m.Confirm(context.Background(), func(context.Context) error {
		calls++
		return nil
	}); err != nil {
		t.Fatalf("confirm on closed modal: %v", err)
	}
	if calls != 0 {
		t.Fatal("confirm on a closed modal must be a no-op")
	}
}

func TestModalOpenWhileBusyIsIgnored(t *testing.T) {
	m := NewConfirmModal()
	m.Open()

	if err := m.Confirm(context.Background(), func(context.Context) error {
		m.Open()
		m.Cancel()
		if m.State() != ModalBusy {
			t.Fatalf("expected busy during action, got %v", m.State())
		}
		return nil
	}); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if m.State() != ModalClosed {
		t.Fatalf("expected closed after action, got %v", m.State())
	}
}

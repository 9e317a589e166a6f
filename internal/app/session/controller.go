// Package session owns the authenticated-or-not presence state that drives
// the site's online/offline mode. All mutation goes through the controller;
// consumers hold read snapshots only.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	apperrors "github.com/atelierhq/studio-platform/internal/errors"
	"github.com/atelierhq/studio-platform/pkg/logger"
)

// Identity describes a signed-in visitor.
type Identity struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// Snapshot is a consistent read of the controller state.
type Snapshot struct {
	User          *Identity
	Authenticated bool
	Mounted       bool
	PromptOpen    bool
	ToastVisible  bool
}

// IdentityVerifier validates an identity at sign-in. The default verifier
// checks shape only; a real identity provider can be swapped in behind this
// interface without touching the controller.
type IdentityVerifier interface {
	Verify(ctx context.Context, id Identity) error
}

// VerifierFunc adapts a function to the IdentityVerifier interface.
type VerifierFunc func(ctx context.Context, id Identity) error

// Verify implements IdentityVerifier.
func (f VerifierFunc) Verify(ctx context.Context, id Identity) error { return f(ctx, id) }

// DefaultVerifier accepts any identity with a name and a plausible email.
func DefaultVerifier() IdentityVerifier {
	return VerifierFunc(func(_ context.Context, id Identity) error {
		if strings.TrimSpace(id.Name) == "" {
			return apperrors.Validation("name is required")
		}
		if !strings.Contains(id.Email, "@") {
			return apperrors.Validation("a valid email is required")
		}
		return nil
	})
}

const defaultReminderPeriod = 5 * time.Minute

// Controller is the single owner of session state.
type Controller struct {
	mu            sync.Mutex
	identity      *Identity
	authenticated bool
	mounted       bool
	promptOpen    bool
	toastVisible  bool
	nagShown      bool

	store    SnapshotStore
	verifier IdentityVerifier
	log      *logger.Logger

	reminderPeriod time.Duration
	cron           *cron.Cron
	reminderEntry  cron.EntryID
}

// Option configures the controller.
type Option func(*Controller)

// WithReminderPeriod overrides the sign-in reminder interval.
func WithReminderPeriod(d time.Duration) Option {
	return func(c *Controller) { c.reminderPeriod = d }
}

// NewController restores the persisted session synchronously. A malformed or
// unreadable snapshot degrades to "no session"; it never fails construction.
func NewController(store SnapshotStore, verifier IdentityVerifier, log *logger.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logger.NewDefault("session")
	}
	if store == nil {
		store = NewMemoryStore()
	}
	if verifier == nil {
		verifier = DefaultVerifier()
	}

	c := &Controller{
		store:          store,
		verifier:       verifier,
		log:            log,
		reminderPeriod: defaultReminderPeriod,
		cron:           cron.New(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.restore()
	return c
}

func (c *Controller) restore() {
	raw, err := c.store.Load(context.Background())
	if err != nil {
		c.log.WithError(apperrors.PersistenceDegraded(err)).Warn("session restore failed")
		return
	}
	if len(raw) == 0 {
		return
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || strings.TrimSpace(id.Email) == "" {
		c.log.WithError(apperrors.PersistenceDegraded(err)).Warn("discarding malformed session snapshot")
		return
	}

	c.identity = &id
	c.authenticated = true
}

// Name implements system.Service.
func (c *Controller) Name() string { return "session" }

// Start begins the reminder scheduler.
func (c *Controller) Start(context.Context) error {
	c.cron.Start()
	return nil
}

// Stop halts the reminder scheduler.
func (c *Controller) Stop(ctx context.Context) error {
	stopped := c.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
	return nil
}

// Mount flips the one-time hydration gate. Until Mount is called the
// externally observable state is unauthenticated, whatever was restored.
// Idempotent; repeated calls never double the reminder schedule.
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mounted {
		return
	}
	c.mounted = true
	if !c.authenticated {
		c.scheduleReminderLocked()
	}
}

// SignIn verifies and stores the identity, closes the sign-in prompt, hides
// any visible reminder, and persists best-effort. The in-memory state is
// authoritative immediately; a persistence failure only costs durability.
func (c *Controller) SignIn(ctx context.Context, id Identity) error {
	if err := c.verifier.Verify(ctx, id); err != nil {
		return err
	}

	c.mu.Lock()
	stored := id
	c.identity = &stored
	c.authenticated = true
	c.promptOpen = false
	c.toastVisible = false
	c.cancelReminderLocked()
	c.mu.Unlock()

	raw, err := json.Marshal(id)
	if err == nil {
		err = c.store.Save(ctx, raw)
	}
	if err != nil {
		c.log.WithError(apperrors.PersistenceDegraded(err)).Warn("session save failed")
	}

	c.log.WithField("email", id.Email).Info("signed in")
	return nil
}

// SignOut clears the identity, durable storage, and all session-scoped flags.
func (c *Controller) SignOut(ctx context.Context) {
	c.mu.Lock()
	c.identity = nil
	c.authenticated = false
	c.toastVisible = false
	c.nagShown = false
	if c.mounted {
		c.scheduleReminderLocked()
	}
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.WithError(apperrors.PersistenceDegraded(err)).Warn("session clear failed")
	}
	c.log.Info("signed out")
}

// OpenPrompt shows the sign-in surface.
func (c *Controller) OpenPrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promptOpen = true
}

// ClosePrompt hides the sign-in surface.
func (c *Controller) ClosePrompt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.promptOpen = false
}

// TriggerAuth is the gateway for privileged actions. When authenticated the
// action runs synchronously exactly once and the prompt stays closed. When
// not, the action is dropped outright and the prompt opens; it is never
// queued for replay after a later sign-in.
func (c *Controller) TriggerAuth(action func()) bool {
	c.mu.Lock()
	allowed := c.mounted && c.authenticated
	if !allowed {
		c.promptOpen = true
	}
	c.mu.Unlock()

	if allowed && action != nil {
		action()
	}
	return allowed
}

// DismissToast hides the reminder notification until the next tick.
func (c *Controller) DismissToast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.toastVisible = false
}

// Snapshot returns a consistent view of the session. Before Mount the
// snapshot is always unauthenticated.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Mounted:      c.mounted,
		PromptOpen:   c.promptOpen,
		ToastVisible: c.toastVisible,
	}
	if !c.mounted || !c.authenticated {
		return snap
	}

	snap.Authenticated = true
	id := *c.identity
	snap.User = &id
	return snap
}

// scheduleReminderLocked registers the periodic sign-in reminder. Idempotent:
// an existing schedule is left untouched.
func (c *Controller) scheduleReminderLocked() {
	if c.reminderEntry != 0 {
		return
	}
	entry, err := c.cron.AddFunc("@every "+c.reminderPeriod.String(), c.fireReminder)
	if err != nil {
		c.log.WithError(err).Warn("failed to schedule sign-in reminder")
		return
	}
	c.reminderEntry = entry
}

func (c *Controller) cancelReminderLocked() {
	if c.reminderEntry == 0 {
		return
	}
	c.cron.Remove(c.reminderEntry)
	c.reminderEntry = 0
}

// fireReminder surfaces the periodic "please sign in" toast.
func (c *Controller) fireReminder() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.mounted || c.authenticated {
		return
	}
	c.toastVisible = true
	c.nagShown = true
}

package relay

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

// ScheduleRequest books an intro call through the calendar service.
type ScheduleRequest struct {
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	StartAt time.Time `json:"start_at"`
	Notes   string    `json:"notes,omitempty"`
}

// Booking is the confirmed slot returned by the calendar service.
type Booking struct {
	ID      string    `json:"id"`
	JoinURL string    `json:"join_url"`
	StartAt time.Time `json:"start_at"`
}

// ScheduleRelay forwards booking requests to the calendar service.
type ScheduleRelay struct {
	client   *Client
	endpoint string
}

// NewScheduleRelay constructs a schedule relay against endpoint.
func NewScheduleRelay(client *Client, endpoint string) *ScheduleRelay {
	return &ScheduleRelay{client: client, endpoint: endpoint}
}

// Book validates and forwards the request, returning the confirmed slot.
func (r *ScheduleRelay) Book(ctx context.Context, req ScheduleRequest) (Booking, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if req.Name == "" {
		return Booking{}, apperrors.Validation("name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return Booking{}, apperrors.Validation("a valid email is required")
	}
	if req.StartAt.IsZero() || req.StartAt.Before(time.Now()) {
		return Booking{}, apperrors.Validation("start time must be in the future")
	}

	raw, err := r.client.postJSON(ctx, "schedule", r.endpoint, req)
	if err != nil {
		return Booking{}, err
	}

	booking := Booking{
		ID:      gjson.GetBytes(raw, "id").String(),
		JoinURL: gjson.GetBytes(raw, "join_url").String(),
	}
	if ts := gjson.GetBytes(raw, "start_at").String(); ts != "" {
		if parsed, perr := time.Parse(time.RFC3339, ts); perr == nil {
			booking.StartAt = parsed
		}
	}
	if booking.ID == "" {
		return Booking{}, apperrors.StoreUnavailable(nil)
	}

	r.client.log.WithField("booking_id", booking.ID).Info("call booked")
	return booking, nil
}

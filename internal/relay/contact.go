package relay

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	apperrors "github.com/atelierhq/studio-platform/internal/errors"
)

// ContactMessage is a visitor inquiry submitted through the contact form.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// ContactRelay forwards contact-form submissions to the mail service.
type ContactRelay struct {
	client   *Client
	endpoint string
}

// NewContactRelay constructs a contact relay against endpoint.
func NewContactRelay(client *Client, endpoint string) *ContactRelay {
	return &ContactRelay{client: client, endpoint: endpoint}
}

// Send validates and forwards the message. Validation failures never reach
// the network.
func (r *ContactRelay) Send(ctx context.Context, msg ContactMessage) error {
	msg.Name = strings.TrimSpace(msg.Name)
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Message = strings.TrimSpace(msg.Message)

	if msg.Name == "" {
		return apperrors.Validation("name is required")
	}
	if !strings.Contains(msg.Email, "@") {
		return apperrors.Validation("a valid email is required")
	}
	if msg.Message == "" {
		return apperrors.Validation("message is required")
	}

	raw, err := r.client.postJSON(ctx, "contact", r.endpoint, msg)
	if err != nil {
		return err
	}

	if ok := gjson.GetBytes(raw, "success"); ok.Exists() && !ok.Bool() {
		return apperrors.StoreUnavailable(nil)
	}

	r.client.log.WithField("email", msg.Email).Info("contact message relayed")
	return nil
}

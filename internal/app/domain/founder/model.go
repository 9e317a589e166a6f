package founder

import "time"

// Founder is a studio founder profile. Founders are never physically removed;
// deletion deactivates them so admin views can still list past founders.
type Founder struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Role        string            `json:"role,omitempty"`
	Description string            `json:"description"`
	ImageURL    string            `json:"image_url"`
	Socials     map[string]string `json:"socials"`
	Order       int               `json:"order"`
	Active      bool              `json:"active"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name        *string            `json:"name,omitempty"`
	Role        *string            `json:"role,omitempty"`
	Description *string            `json:"description,omitempty"`
	ImageURL    *string            `json:"image_url,omitempty"`
	Socials     *map[string]string `json:"socials,omitempty"`
	Order       *int               `json:"order,omitempty"`
	Active      *bool              `json:"active,omitempty"`
}

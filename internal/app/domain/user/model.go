package user

import "time"

// User is an account known to the admin surface.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	PhotoURL  string    `json:"photo_url,omitempty"`
	Role      string    `json:"role,omitempty"`
	Order     int       `json:"order"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
	Role     *string `json:"role,omitempty"`
	Order    *int    `json:"order,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

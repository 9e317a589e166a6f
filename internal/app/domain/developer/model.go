package developer

import "time"

// Developer is a team member profile.
type Developer struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Role      string            `json:"role,omitempty"`
	ImageURL  string            `json:"image_url,omitempty"`
	Skills    []string          `json:"skills"`
	Socials   map[string]string `json:"socials"`
	Order     int               `json:"order"`
	Active    bool              `json:"active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name     *string            `json:"name,omitempty"`
	Role     *string            `json:"role,omitempty"`
	ImageURL *string            `json:"image_url,omitempty"`
	Skills   *[]string          `json:"skills,omitempty"`
	Socials  *map[string]string `json:"socials,omitempty"`
	Order    *int               `json:"order,omitempty"`
	Active   *bool              `json:"active,omitempty"`
}

package project

import "time"

// Project is a portfolio entry shown on the public site.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags"`
	LiveURL     string    `json:"live_url,omitempty"`
	RepoURL     string    `json:"repo_url,omitempty"`
	Order       int       `json:"order"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	LiveURL     *string   `json:"live_url,omitempty"`
	RepoURL     *string   `json:"repo_url,omitempty"`
	Order       *int      `json:"order,omitempty"`
	Active      *bool     `json:"active,omitempty"`
}

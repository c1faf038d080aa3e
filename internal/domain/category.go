package domain

import "time"

// Category groups products. Categories may nest one under another.
type Category struct {
	ID        string        `json:"id"`
	Name      LocalizedText `json:"name"`
	Slug      string        `json:"slug"`
	ParentID  *string       `json:"parentId,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

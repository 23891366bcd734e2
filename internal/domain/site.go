package domain

import "time"

// Site is one pilgrimage site. All content and all guides belong to exactly
// one site.
type Site struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	City      string    `json:"city"`
	CreatedAt time.Time `json:"createdAt"`
	Version   int32     `json:"-"`
}

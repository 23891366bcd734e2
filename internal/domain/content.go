package domain

import (
	"encoding/json"
	"time"
)

type ContentKind string

const (
	KindMedia        ContentKind = "media"
	KindMassSchedule ContentKind = "mass_schedule"
	KindEvent        ContentKind = "event"
	KindNearbyPlace  ContentKind = "nearby_place"
)

type ContentStatus string

const (
	StatusPending  ContentStatus = "pending"
	StatusApproved ContentStatus = "approved"
	StatusRejected ContentStatus = "rejected"
)

// ContentItem is the common shape shared by the four content kinds. The
// kind-specific fields travel in Payload and are only interpreted during
// validation.
type ContentItem struct {
	ID              int64           `json:"id"`
	SiteID          int64           `json:"siteID"`
	Kind            ContentKind     `json:"kind"`
	Status          ContentStatus   `json:"status"`
	IsActive        bool            `json:"isActive"`
	RejectionReason string          `json:"rejectionReason,omitempty"`
	CreatedBy       int64           `json:"createdBy"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	ReviewedAt      *time.Time      `json:"reviewedAt"`
	ReviewedBy      *int64          `json:"reviewedBy"`
	Payload         json.RawMessage `json:"payload"`
	Version         int32           `json:"-"`
}

type MediaPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MediaType   string `json:"mediaType"` // image or video
	URL         string `json:"url"`
}

type MassSchedulePayload struct {
	DaysOfWeek []int32 `json:"daysOfWeek"` // 0 = Sunday .. 6 = Saturday
	Time       string  `json:"time"`       // 15:04:05
	Location   string  `json:"location"`
}

type EventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"` // 2006-01-02
	EndDate     string `json:"endDate"`
	StartTime   string `json:"startTime"` // 15:04:05
	EndTime     string `json:"endTime"`
}

type NearbyPlacePayload struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Address        string  `json:"address"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	DistanceMeters int32   `json:"distanceMeters"`
}

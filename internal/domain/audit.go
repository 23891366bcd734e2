package domain

import "time"

const (
	EntityKindContentItem     = "content_item"
	EntityKindShiftSubmission = "shift_submission"
)

// AuditRecord is appended on every moderation transition, including activation
// toggles (recorded as active/inactive).
type AuditRecord struct {
	ID         int64     `json:"id"`
	EntityKind string    `json:"entityKind"`
	EntityID   int64     `json:"entityID"`
	ActorID    int64     `json:"actorID"`
	FromStatus string    `json:"fromStatus"`
	ToStatus   string    `json:"toStatus"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

package domain

import "time"

type SubmissionType string

const (
	SubmissionTypeNew    SubmissionType = "new"
	SubmissionTypeChange SubmissionType = "change"
)

// ShiftDefinition is one recurring weekly shift. Times are time-of-day strings
// in 15:04:05 format, StartTime < EndTime.
type ShiftDefinition struct {
	DayOfWeek int32  `json:"dayOfWeek"` // 0 = Sunday .. 6 = Saturday
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type ShiftChange struct {
	Old ShiftDefinition `json:"old"`
	New ShiftDefinition `json:"new"`
}

// ChangeSet describes how a proposed shift set differs from the currently
// approved one. Unchanged shifts do not appear.
type ChangeSet struct {
	Added    []ShiftDefinition `json:"added"`
	Removed  []ShiftDefinition `json:"removed"`
	Modified []ShiftChange     `json:"modified"`
}

func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.Added) == 0 && len(cs.Removed) == 0 && len(cs.Modified) == 0
}

// ShiftSubmission is a guide's recurring weekly availability, anchored to the
// Monday in WeekStartDate. Statuses are terminal once reviewed; an approved
// submission is retired by stamping SupersededAt when a later one is approved,
// so at most one approved submission per guide is ever unsuperseded.
type ShiftSubmission struct {
	ID              int64             `json:"id"`
	GuideID         int64             `json:"guideID"`
	SiteID          int64             `json:"siteID"`
	SubmissionType  SubmissionType    `json:"submissionType"`
	WeekStartDate   time.Time         `json:"weekStartDate"`
	Shifts          []ShiftDefinition `json:"shifts"`
	Status          ContentStatus     `json:"status"`
	RejectionReason string            `json:"rejectionReason,omitempty"`
	Changes         *ChangeSet        `json:"changes,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	ReviewedAt      *time.Time        `json:"reviewedAt"`
	ReviewedBy      *int64            `json:"reviewedBy"`
	SupersededAt    *time.Time        `json:"supersededAt"`
	Version         int32             `json:"-"`
}

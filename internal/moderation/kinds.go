package moderation

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sanctuary-platform/console/backend/internal/domain"
)

const (
	dateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04:05"
)

// kindDescriptor is everything the engine needs to know about one content
// kind. The state machine itself is identical for all kinds; only payload
// validation and the odd per-kind rule differ.
type kindDescriptor struct {
	validatePayload func(payload json.RawMessage) error

	// deactivatePending reports whether the kind may be deactivated while its
	// review is still pending. Events may not: hiding an event that nobody has
	// reviewed yet would silently drop it from the moderation queue.
	deactivatePending bool
}

var kinds = map[domain.ContentKind]kindDescriptor{
	domain.KindMedia:        {validatePayload: validateMediaPayload, deactivatePending: true},
	domain.KindMassSchedule: {validatePayload: validateMassSchedulePayload, deactivatePending: true},
	domain.KindEvent:        {validatePayload: validateEventPayload, deactivatePending: false},
	domain.KindNearbyPlace:  {validatePayload: validateNearbyPlacePayload, deactivatePending: true},
}

func descriptorFor(kind domain.ContentKind) (kindDescriptor, error) {
	desc, exists := kinds[kind]
	if !exists {
		return kindDescriptor{}, domain.NewValidationError("unknown content kind %q", kind)
	}
	return desc, nil
}

// ValidatePayload checks a kind-specific payload before it enters moderation.
func ValidatePayload(kind domain.ContentKind, payload json.RawMessage) error {
	desc, err := descriptorFor(kind)
	if err != nil {
		return err
	}
	if len(payload) == 0 {
		return domain.NewValidationError("payload is required")
	}
	return desc.validatePayload(payload)
}

func validateMediaPayload(payload json.RawMessage) error {
	var media domain.MediaPayload
	if err := json.Unmarshal(payload, &media); err != nil {
		return domain.NewValidationError("malformed media payload: %s", err.Error())
	}

	if strings.TrimSpace(media.Title) == "" {
		return domain.NewValidationError("media title is required")
	}
	if media.MediaType != "image" && media.MediaType != "video" {
		return domain.NewValidationError("media type %q must be image or video", media.MediaType)
	}
	if strings.TrimSpace(media.URL) == "" {
		return domain.NewValidationError("media url is required")
	}

	return nil
}

func validateMassSchedulePayload(payload json.RawMessage) error {
	var ms domain.MassSchedulePayload
	if err := json.Unmarshal(payload, &ms); err != nil {
		return domain.NewValidationError("malformed mass schedule payload: %s", err.Error())
	}

	if len(ms.DaysOfWeek) == 0 {
		return domain.NewValidationError("mass schedule needs at least one day of week")
	}
	seen := make(map[int32]bool, len(ms.DaysOfWeek))
	for _, day := range ms.DaysOfWeek {
		if day < 0 || day > 6 {
			return domain.NewValidationError("day of week %d is out of range 0-6", day)
		}
		if seen[day] {
			return domain.NewValidationError("duplicate day of week %d", day)
		}
		seen[day] = true
	}
	if _, err := time.Parse(timeOfDayLayout, ms.Time); err != nil {
		return domain.NewValidationError("mass time %q is not a valid time of day", ms.Time)
	}

	return nil
}

func validateEventPayload(payload json.RawMessage) error {
	var event domain.EventPayload
	if err := json.Unmarshal(payload, &event); err != nil {
		return domain.NewValidationError("malformed event payload: %s", err.Error())
	}

	if strings.TrimSpace(event.Title) == "" {
		return domain.NewValidationError("event title is required")
	}
	startDate, err := time.Parse(dateLayout, event.StartDate)
	if err != nil {
		return domain.NewValidationError("event start date %q is not a valid date", event.StartDate)
	}
	endDate, err := time.Parse(dateLayout, event.EndDate)
	if err != nil {
		return domain.NewValidationError("event end date %q is not a valid date", event.EndDate)
	}
	if endDate.Before(startDate) {
		return domain.NewValidationError("event end date must not be before its start date")
	}
	startTime, err := time.Parse(timeOfDayLayout, event.StartTime)
	if err != nil {
		return domain.NewValidationError("event start time %q is not a valid time of day", event.StartTime)
	}
	endTime, err := time.Parse(timeOfDayLayout, event.EndTime)
	if err != nil {
		return domain.NewValidationError("event end time %q is not a valid time of day", event.EndTime)
	}
	// Times only need to be ordered when the event starts and ends on the same
	// day.
	if startDate.Equal(endDate) && !startTime.Before(endTime) {
		return domain.NewValidationError("event must start before it ends")
	}

	return nil
}

func validateNearbyPlacePayload(payload json.RawMessage) error {
	var place domain.NearbyPlacePayload
	if err := json.Unmarshal(payload, &place); err != nil {
		return domain.NewValidationError("malformed nearby place payload: %s", err.Error())
	}

	if strings.TrimSpace(place.Name) == "" {
		return domain.NewValidationError("place name is required")
	}
	if place.Latitude < -90 || place.Latitude > 90 {
		return domain.NewValidationError("latitude %f is out of range", place.Latitude)
	}
	if place.Longitude < -180 || place.Longitude > 180 {
		return domain.NewValidationError("longitude %f is out of range", place.Longitude)
	}
	if place.DistanceMeters < 0 {
		return domain.NewValidationError("distance must not be negative")
	}

	return nil
}

package moderation

import (
	"encoding/json"
	"testing"

	"github.com/sanctuary-platform/console/backend/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		kind    domain.ContentKind
		payload string
		wantErr bool
	}{
		{
			name:    "media ok",
			kind:    domain.KindMedia,
			payload: `{"title":"Crypt","mediaType":"video","url":"https://cdn.example.org/crypt.mp4"}`,
		},
		{
			name:    "media missing title",
			kind:    domain.KindMedia,
			payload: `{"title":" ","mediaType":"image","url":"https://cdn.example.org/x.jpg"}`,
			wantErr: true,
		},
		{
			name:    "media bad type",
			kind:    domain.KindMedia,
			payload: `{"title":"Crypt","mediaType":"audio","url":"https://cdn.example.org/x.mp3"}`,
			wantErr: true,
		},
		{
			name:    "mass schedule ok",
			kind:    domain.KindMassSchedule,
			payload: `{"daysOfWeek":[0,3],"time":"08:30:00","location":"Chapel"}`,
		},
		{
			name:    "mass schedule empty days",
			kind:    domain.KindMassSchedule,
			payload: `{"daysOfWeek":[],"time":"08:30:00"}`,
			wantErr: true,
		},
		{
			name:    "mass schedule day out of range",
			kind:    domain.KindMassSchedule,
			payload: `{"daysOfWeek":[7],"time":"08:30:00"}`,
			wantErr: true,
		},
		{
			name:    "mass schedule duplicate day",
			kind:    domain.KindMassSchedule,
			payload: `{"daysOfWeek":[2,2],"time":"08:30:00"}`,
			wantErr: true,
		},
		{
			name:    "mass schedule bad time",
			kind:    domain.KindMassSchedule,
			payload: `{"daysOfWeek":[2],"time":"8 o'clock"}`,
			wantErr: true,
		},
		{
			name:    "event ok",
			kind:    domain.KindEvent,
			payload: `{"title":"Novena","startDate":"2024-09-01","endDate":"2024-09-09","startTime":"19:00:00","endTime":"20:00:00"}`,
		},
		{
			name:    "event end date before start date",
			kind:    domain.KindEvent,
			payload: `{"title":"Novena","startDate":"2024-09-09","endDate":"2024-09-01","startTime":"19:00:00","endTime":"20:00:00"}`,
			wantErr: true,
		},
		{
			name:    "single day event with inverted times",
			kind:    domain.KindEvent,
			payload: `{"title":"Vigil","startDate":"2024-09-01","endDate":"2024-09-01","startTime":"21:00:00","endTime":"20:00:00"}`,
			wantErr: true,
		},
		{
			name:    "overnight event may cross midnight",
			kind:    domain.KindEvent,
			payload: `{"title":"Vigil","startDate":"2024-09-01","endDate":"2024-09-02","startTime":"22:00:00","endTime":"06:00:00"}`,
		},
		{
			name:    "nearby place ok",
			kind:    domain.KindNearbyPlace,
			payload: `{"name":"Fountain","category":"landmark","latitude":42.6,"longitude":-5.5,"distanceMeters":120}`,
		},
		{
			name:    "nearby place latitude out of range",
			kind:    domain.KindNearbyPlace,
			payload: `{"name":"Fountain","latitude":95.0,"longitude":-5.5}`,
			wantErr: true,
		},
		{
			name:    "nearby place negative distance",
			kind:    domain.KindNearbyPlace,
			payload: `{"name":"Fountain","latitude":42.6,"longitude":-5.5,"distanceMeters":-3}`,
			wantErr: true,
		},
		{
			name:    "unknown kind",
			kind:    "banner",
			payload: `{}`,
			wantErr: true,
		},
		{
			name:    "empty payload",
			kind:    domain.KindMedia,
			payload: "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.kind, json.RawMessage(tt.payload))
			if tt.wantErr {
				var validationErr *domain.ValidationError
				require.ErrorAs(t, err, &validationErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunnelStepMatches(t *testing.T) {
	event := &Event{
		UserID:    "user-1",
		SessionID: "sess-1",
		Type:      EventCTAClick,
		Category:  CategoryConversion,
		Action:    "click",
		Label:     "webinar-register",
		Metadata:  map[string]any{MetaPage: "webinar"},
	}

	tests := []struct {
		name string
		step FunnelStep
		want bool
	}{
		{
			name: "type only",
			step: FunnelStep{EventType: EventCTAClick},
			want: true,
		},
		{
			name: "wrong type",
			step: FunnelStep{EventType: EventPageView},
			want: false,
		},
		{
			name: "label criterion",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{"label": "webinar-register"}},
			want: true,
		},
		{
			name: "label mismatch",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{"label": "other"}},
			want: false,
		},
		{
			name: "action criterion",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{"action": "click"}},
			want: true,
		},
		{
			name: "category criterion",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{"category": "conversion"}},
			want: true,
		},
		{
			name: "metadata fallthrough",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{MetaPage: "webinar"}},
			want: true,
		},
		{
			name: "metadata mismatch",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{MetaPage: "landing"}},
			want: false,
		},
		{
			name: "all criteria must hold",
			step: FunnelStep{EventType: EventCTAClick, Criteria: map[string]string{
				"label":  "webinar-register",
				MetaPage: "landing",
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.step.Matches(event))
		})
	}
}

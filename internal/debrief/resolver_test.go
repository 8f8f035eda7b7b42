package debrief

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name       string
		candidates []string
		available  []string
		want       string
		wantOK     bool
	}{
		{
			name:       "exact match wins",
			candidates: []string{"Partner"},
			available:  []string{"Date", "Partner", "Coach ID"},
			want:       "Partner",
			wantOK:     true,
		},
		{
			name:       "exact match beats earlier substring candidate",
			candidates: []string{"Partner", "Organization"},
			available:  []string{"partner_name", "Organization"},
			want:       "Organization",
			wantOK:     true,
		},
		{
			name:       "exact match tolerates padded header",
			candidates: []string{"Session Date"},
			available:  []string{"  Session Date  "},
			want:       "  Session Date  ",
			wantOK:     true,
		},
		{
			name:       "substring match is case insensitive",
			candidates: []string{"Partner Program"},
			available:  []string{"Which PARTNER PROGRAM was this Debrief connected to?"},
			want:       "Which PARTNER PROGRAM was this Debrief connected to?",
			wantOK:     true,
		},
		{
			name:       "substring iterates candidates before columns",
			candidates: []string{"Urgency", "Pressure"},
			available:  []string{"Primary pressure discussed", "Urgency rating"},
			want:       "Urgency rating",
			wantOK:     true,
		},
		{
			name:       "substring returns first column in table order",
			candidates: []string{"Date"},
			available:  []string{"Start Date", "End Date"},
			want:       "Start Date",
			wantOK:     true,
		},
		{
			name:       "keyword fallback uses first token of first candidate",
			candidates: []string{"Coach ID", "Facilitator"},
			available:  []string{"Partner", "Assigned coach for session"},
			want:       "Assigned coach for session",
			wantOK:     true,
		},
		{
			name:       "no match is unbound",
			candidates: []string{"Relevance"},
			available:  []string{"Partner", "Date"},
			wantOK:     false,
		},
		{
			name:       "empty candidate list",
			candidates: nil,
			available:  []string{"Partner"},
			wantOK:     false,
		},
		{
			name:       "empty available set",
			candidates: []string{"Partner"},
			available:  nil,
			wantOK:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveColumn(tt.candidates, tt.available)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestResolveRole_QuestionTextVariants(t *testing.T) {
	// Full question text from one form revision, short labels from another.
	full := []string{
		"Which partner program was this Debrief connected to?",
		"Debrief Session Date",
		"What single organizational pressure is most frequently mentioned by your executives right now?",
	}
	short := []string{"Partner", "Date", "Pressure"}

	for _, role := range []Role{RolePartner, RoleDate, RolePressure} {
		_, ok := ResolveRole(role, full)
		assert.True(t, ok, "role %s should bind against full question text", role)
		_, ok = ResolveRole(role, short)
		assert.True(t, ok, "role %s should bind against short labels", role)
	}
}

package debrief

import (
	"time"
)

// Role identifies an abstract field meaning independent of the literal
// column name used by any particular survey export revision.
type Role string

const (
	RolePartner   Role = "partner"
	RoleDate      Role = "date"
	RolePressure  Role = "pressure"
	RoleChallenge Role = "challenge"
	RoleObstacle  Role = "obstacle"
	RoleRelevance Role = "relevance"
	RoleSupport   Role = "support"
	RoleUrgency   Role = "urgency"
	RoleCoach     Role = "coach"
	RoleTakeaway  Role = "takeaway"
	RoleFeedback  Role = "feedback"
)

// IsValid reports whether the role is one of the known semantic roles.
func (r Role) IsValid() bool {
	_, ok := roleCandidates[r]
	return ok
}

// ThemeRoles lists the free-text roles served by the theme extractor.
var ThemeRoles = []Role{RolePressure, RoleChallenge, RoleObstacle, RoleTakeaway, RoleFeedback}

// roleCandidates maps each role to its ordered candidate column names.
// The first entries are the full question texts used by the survey form;
// later entries are the short labels seen in trimmed-down exports. Order
// matters: the resolver tries exact matches across all candidates first,
// then substring matches in this order.
var roleCandidates = map[Role][]string{
	RolePartner: {
		"Which partner program was this Debrief connected to?",
		"Partner Program",
		"Partner",
	},
	RoleDate: {
		"Debrief Session Date",
		"Session Date",
		"Date",
	},
	RolePressure: {
		"What single organizational pressure is most frequently mentioned by your executives right now?",
		"Organizational Pressure",
		"Pressure",
	},
	RoleChallenge: {
		"What leadership challenge or development need keeps coming up across multiple executive sessions?",
		"Leadership Challenge",
		"Challenge",
	},
	RoleObstacle: {
		"What's the biggest obstacle preventing your executives from implementing what they learn in coaching?",
		"Implementation Obstacle",
		"Obstacle",
	},
	RoleRelevance: {
		"How relevant was today's discussion to your current executive coaching challenges?",
		"Relevance",
	},
	RoleSupport: {
		"How supported do you feel to show up fully in your executive coaching sessions?",
		"Support",
	},
	RoleUrgency: {
		"How urgent is the primary pressure/challenge you discussed today?",
		"Urgency",
	},
	RoleCoach: {
		"Coach ID",
		"Coach",
	},
	RoleTakeaway: {
		"What was the most valuable takeaway from today's session for your coaching practice?",
		"Valuable Takeaway",
		"Takeaway",
	},
	RoleFeedback: {
		"Is there anything you didn't get to share in today's session that feels important for the group to know?",
		"Open Feedback",
		"Feedback",
	},
}

// coachColumnPriority is the fixed priority order of coach-identifying
// columns used for the distinct coach count. The first column present in
// the table wins; the resolver-bound coach role is the last resort.
var coachColumnPriority = []string{"Coach ID", "Coach Name", "Coach Email", "Coach"}

// RawTable is a loosely structured table as delivered by an acquisition
// source. Cells are the textual cell values of the export; an empty
// string is a blank cell. Rows may be ragged (shorter than the header).
type RawTable struct {
	Headers []string
	Rows    [][]string
}

// DateRange is a closed [From, To] span of session dates.
// The zero value means no valid dates were observed.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// IsZero reports whether the range is absent.
func (d DateRange) IsZero() bool {
	return d.From.IsZero() && d.To.IsZero()
}

// Days returns the span in whole days, 0 for an absent range.
func (d DateRange) Days() int {
	if d.IsZero() {
		return 0
	}
	return int(d.To.Sub(d.From).Hours() / 24)
}

// Dataset is the normalized, immutable form of a loaded survey table.
// Role bindings, the partner roster, and the global date range are
// resolved once by Normalize and are read-only afterwards.
type Dataset struct {
	headers  []string
	rows     [][]string
	bindings map[Role]int
	dates    []time.Time // parsed per-row date; zero time = absent
	partners []string    // sorted distinct partner values
	span     DateRange
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.rows)
}

// Headers returns the normalized (trimmed, deduplicated) header names.
func (d *Dataset) Headers() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.headers))
	copy(out, d.headers)
	return out
}

// Partners returns the sorted roster of distinct partner values.
func (d *Dataset) Partners() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.partners))
	copy(out, d.partners)
	return out
}

// Span returns the global date range of the dataset.
func (d *Dataset) Span() DateRange {
	if d == nil {
		return DateRange{}
	}
	return d.span
}

// Binding returns the column index bound to the role.
func (d *Dataset) Binding(role Role) (int, bool) {
	if d == nil {
		return 0, false
	}
	idx, ok := d.bindings[role]
	return idx, ok
}

// BoundColumn returns the header name bound to the role, or "" if the
// role is unbound.
func (d *Dataset) BoundColumn(role Role) string {
	if idx, ok := d.Binding(role); ok {
		return d.headers[idx]
	}
	return ""
}

// cell returns the trimmed cell text for the role in the given row, or ""
// when the role is unbound or the row is too short.
func (d *Dataset) cell(row int, role Role) string {
	idx, ok := d.bindings[role]
	if !ok || idx >= len(d.rows[row]) {
		return ""
	}
	return trimCell(d.rows[row][idx])
}

// cellAt returns the trimmed cell text at a literal column index.
func (d *Dataset) cellAt(row, col int) string {
	if col >= len(d.rows[row]) {
		return ""
	}
	return trimCell(d.rows[row][col])
}

// dateAt returns the parsed session date of the row; zero time = absent.
func (d *Dataset) dateAt(row int) time.Time {
	return d.dates[row]
}

// Row returns the raw cells of a single row, padded to header width.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.headers))
	for c := range d.headers {
		out[c] = d.cellAt(i, c)
	}
	return out
}

// Metrics is the aggregate summary for the whole table or one partner.
type Metrics struct {
	TotalResponses int       `json:"total_responses"`
	UniqueSessions int       `json:"unique_sessions"`
	AvgRelevance   float64   `json:"avg_relevance"`
	AvgSupport     float64   `json:"avg_support"`
	AvgUrgency     float64   `json:"avg_urgency"`
	CoachCount     int       `json:"coach_count"`
	DateRange      DateRange `json:"date_range"`
	DateRangeDays  int       `json:"date_range_days"`
}

// ThemeCount is one entry of a theme frequency table.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// TimePoint is one session date of the rating time series.
type TimePoint struct {
	Date         time.Time `json:"date"`
	AvgRelevance float64   `json:"avg_relevance"`
	AvgSupport   float64   `json:"avg_support"`
	AvgUrgency   float64   `json:"avg_urgency"`
	Responses    int       `json:"responses"`
}

// PartnerReport is a read-only projection for one partner, assembled on
// demand for presentation and export. TakeawayQuotes and FeedbackQuotes
// are the cleaned free-text responses in row order for the qualitative
// insights view.
type PartnerReport struct {
	PartnerName    string       `json:"partner_name"`
	SessionCount   int          `json:"session_count"`
	DateRange      DateRange    `json:"date_range"`
	Pressures      []ThemeCount `json:"pressures"`
	Challenges     []ThemeCount `json:"challenges"`
	Obstacles      []ThemeCount `json:"obstacles"`
	Takeaways      []ThemeCount `json:"takeaways"`
	TimeSeries     []TimePoint  `json:"time_series"`
	TakeawayQuotes []string     `json:"takeaway_quotes"`
	FeedbackQuotes []string     `json:"feedback_quotes"`
	Metrics        Metrics      `json:"metrics"`
}

package acquire

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"debriefpulse/internal/debrief"
)

// SheetsSource reads survey responses from a Google Sheets spreadsheet
// using a service account. The sheet must be shared with the service
// account email.
type SheetsSource struct {
	spreadsheetID   string
	readRange       string
	credentialsFile string
	logger          *slog.Logger

	service *sheets.Service
}

// NewSheetsSource creates a source for the given spreadsheet. readRange
// is an A1-notation range or a bare sheet name.
func NewSheetsSource(spreadsheetID, readRange, credentialsFile string, logger *slog.Logger) *SheetsSource {
	return &SheetsSource{
		spreadsheetID:   spreadsheetID,
		readRange:       readRange,
		credentialsFile: credentialsFile,
		logger:          logger,
	}
}

// Describe returns a human-readable identifier for logging.
func (s *SheetsSource) Describe() string {
	return fmt.Sprintf("sheets:%s!%s", s.spreadsheetID, s.readRange)
}

// Fetch pulls the response table through the Sheets API.
func (s *SheetsSource) Fetch(ctx context.Context) (debrief.RawTable, error) {
	svc, err := s.ensureService(ctx)
	if err != nil {
		return debrief.RawTable{}, err
	}

	resp, err := svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		return debrief.RawTable{}, fmt.Errorf("failed to read spreadsheet values: %w", err)
	}

	s.logger.InfoContext(ctx, "spreadsheet loaded",
		slog.String("spreadsheet_id", s.spreadsheetID),
		slog.String("range", s.readRange),
		slog.Int("rows", len(resp.Values)))

	if len(resp.Values) == 0 {
		return debrief.RawTable{}, nil
	}

	table := toStringTable(resp.Values)
	headers := table[0]
	return debrief.RawTable{
		Headers: headers,
		Rows:    padRows(headers, table[1:]),
	}, nil
}

// ensureService lazily builds the Sheets client so that construction
// never needs a context or network access.
func (s *SheetsSource) ensureService(ctx context.Context) (*sheets.Service, error) {
	if s.service != nil {
		return s.service, nil
	}

	credentialsJSON, err := os.ReadFile(s.credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	s.service = svc
	return svc, nil
}

// toStringTable converts the API's interface values to strings.
func toStringTable(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = fmt.Sprintf("%v", v)
		}
		out[i] = cells
	}
	return out
}

package acquire

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToStringTable(t *testing.T) {
	values := [][]interface{}{
		{"Date", "Partner", "Overall rating"},
		{"2025-01-10", "Acme Corp", 5},
		{45719, "Globex", 4.5},
	}

	table := toStringTable(values)

	assert.Equal(t, []string{"Date", "Partner", "Overall rating"}, table[0])
	assert.Equal(t, []string{"2025-01-10", "Acme Corp", "5"}, table[1])
	assert.Equal(t, []string{"45719", "Globex", "4.5"}, table[2])
}

func TestPadRows(t *testing.T) {
	headers := []string{"a", "b", "c"}
	rows := padRows(headers, [][]string{
		{"1"},
		{"1", "2", "3"},
	})

	assert.Equal(t, []string{"1", "", ""}, rows[0])
	assert.Equal(t, []string{"1", "2", "3"}, rows[1])
}

func TestSheetsSource_FetchWithoutCredentials(t *testing.T) {
	src := NewSheetsSource("sheet-id", "Form_Responses", "does/not/exist.json", slog.Default())
	_, err := src.Fetch(context.Background())
	assert.ErrorContains(t, err, "credentials")
}

func TestSheetsSource_Describe(t *testing.T) {
	src := NewSheetsSource("sheet-id", "Form_Responses", "creds.json", slog.Default())
	assert.Equal(t, "sheets:sheet-id!Form_Responses", src.Describe())
}

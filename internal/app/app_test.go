package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debriefpulse/internal/config"
	"debriefpulse/internal/infrastructure"
)

// A single test constructs the application once: the OpenTelemetry
// prometheus exporter registers on the process-global registry and
// cannot be built twice.
func TestNewApplication(t *testing.T) {
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	t.Setenv("DEBRIEF_SOURCE_EXCEL_PATH", "testdata/debriefs.xlsx")
	t.Setenv("DEBRIEF_LOGGING_OUTPUT", "stdout")

	app, err := NewApplication()
	require.NoError(t, err)

	assert.NotNil(t, app.Config)
	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.DebriefService)
	assert.NotNil(t, app.Logger)

	// The service starts empty; the first refresh happens in Start
	assert.False(t, app.DebriefService.Loaded())
	assert.Equal(t, "excel:testdata/debriefs.xlsx", app.DebriefService.SourceDescription())

	t.Run("build sheets source", func(t *testing.T) {
		app.Config.Source = config.SourceConfig{
			Kind:            "sheets",
			SpreadsheetID:   "abc123",
			SheetRange:      "Form_Responses",
			CredentialsFile: "creds.json",
		}
		src, err := app.buildSource()
		require.NoError(t, err)
		assert.Equal(t, "sheets:abc123!Form_Responses", src.Describe())
	})

	t.Run("unknown source kind", func(t *testing.T) {
		app.Config.Source.Kind = "ftp"
		_, err := app.buildSource()
		assert.Error(t, err)
	})
}

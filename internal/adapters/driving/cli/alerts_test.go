package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

func TestAlertsCheckCmd_PrintsTriggered(t *testing.T) {
	report := testReport()
	report.Alerts = []domain.Alert{
		{Type: domain.AlertHeatSurge, Level: domain.LevelDanger, Title: "Flow surging", Body: "score 640"},
	}
	report.Notified = true
	p := &mockPipeline{report: report}
	withServices(t, &Services{Pipeline: p})

	out, err := executeCommand(t, "alerts", "check")

	require.NoError(t, err)
	assert.Equal(t, []string{"alerts"}, p.calls)
	assert.Contains(t, out, "Triggered alerts: 1")
	assert.Contains(t, out, "[DANGER] Flow surging")
	assert.Contains(t, out, "score 640")
	assert.Contains(t, out, "Alerts delivered.")
}

func TestAlertsCheckCmd_NoAlerts(t *testing.T) {
	withServices(t, &Services{Pipeline: &mockPipeline{report: testReport()}})

	out, err := executeCommand(t, "alerts", "check")

	require.NoError(t, err)
	assert.Contains(t, out, "No alerts.")
	assert.NotContains(t, out, "Alerts delivered.")
}

func TestAlertsListCmd_FiltersByType(t *testing.T) {
	a := &mockAlerts{alerts: []domain.Alert{{Level: domain.LevelWarning, Title: "Rank change"}}}
	withServices(t, &Services{Alerts: a})

	out, err := executeCommand(t, "alerts", "list", "--days", "3", "--type", string(domain.AlertRankChange))

	require.NoError(t, err)
	assert.Equal(t, 3, a.gotDays)
	assert.Equal(t, domain.AlertRankChange, a.gotType)
	assert.Contains(t, out, "Alerts in the last 3 days: 1")
	assert.Contains(t, out, "[WARNING] Rank change")
}

func TestAlertsListCmd_UnknownType(t *testing.T) {
	withServices(t, &Services{Alerts: &mockAlerts{}})

	_, err := executeCommand(t, "alerts", "list", "--type", "bogus")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAlertsListCmd_Unnotified(t *testing.T) {
	a := &mockAlerts{unnotified: []domain.Alert{{Level: domain.LevelInfo, Title: "Quiet"}}}
	withServices(t, &Services{Alerts: a})

	out, err := executeCommand(t, "alerts", "list", "--unnotified")

	require.NoError(t, err)
	assert.Contains(t, out, "Undelivered alerts: 1")
	assert.Zero(t, a.gotDays)
}

func TestAlertsSummaryCmd(t *testing.T) {
	a := &mockAlerts{summary: &domain.AlertSummary{
		Days:    7,
		Total:   3,
		ByType:  map[domain.AlertType]int{domain.AlertHeatSurge: 2, domain.AlertViralSpread: 1},
		ByLevel: map[domain.AlertLevel]int{domain.LevelDanger: 1, domain.LevelWarning: 2},
	}}
	withServices(t, &Services{Alerts: a})

	out, err := executeCommand(t, "alerts", "summary")

	require.NoError(t, err)
	assert.Equal(t, 7, a.gotDays)
	assert.Contains(t, out, "Total: 3")
	assert.Regexp(t, `heat_surge\s+2`, out)
	assert.Regexp(t, `warning\s+2`, out)
}

func TestThresholdsListCmd(t *testing.T) {
	a := &mockAlerts{thresholds: []domain.ThresholdEntry{
		{Key: "heat_threshold", Value: "700", Description: "flow score that raises a surge alert"},
	}}
	withServices(t, &Services{Alerts: a})

	out, err := executeCommand(t, "thresholds", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "heat_threshold")
	assert.Contains(t, out, "700")
}

func TestThresholdsSetCmd(t *testing.T) {
	a := &mockAlerts{}
	withServices(t, &Services{Alerts: a})

	out, err := executeCommand(t, "thresholds", "set", "heat_threshold", "650")

	require.NoError(t, err)
	assert.Equal(t, "heat_threshold", a.setKey)
	assert.Equal(t, "650", a.setValue)
	assert.Contains(t, out, "Set heat_threshold = 650")
}

func TestThresholdsSetCmd_Rejected(t *testing.T) {
	a := &mockAlerts{err: domain.ErrInvalidInput}
	withServices(t, &Services{Alerts: a})

	_, err := executeCommand(t, "thresholds", "set", "heat_threshold", "--", "-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestThresholdsSetCmd_RequiresTwoArgs(t *testing.T) {
	withServices(t, &Services{Alerts: &mockAlerts{}})

	_, err := executeCommand(t, "thresholds", "set", "heat_threshold")

	require.Error(t, err)
}

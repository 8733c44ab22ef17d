package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

func testAlert(alertType domain.AlertType, level domain.AlertLevel, createdAt time.Time) domain.Alert {
	return domain.Alert{
		Type:           alertType,
		Level:          level,
		Title:          string(alertType) + " triggered",
		Body:           "details",
		TriggerValue:   850,
		ThresholdValue: 800,
		CreatedAt:      createdAt,
	}
}

// ==================== Alert Store Tests ====================

func TestAlertStore_SaveAlerts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	snapID, err := store.SnapshotStore().SaveSnapshot(ctx, testSnapshot(time.Now(), 850))
	require.NoError(t, err)

	alerts := []domain.Alert{
		testAlert(domain.AlertHeatSurge, domain.LevelDanger, time.Now()),
		testAlert(domain.AlertViralSpread, domain.LevelWarning, time.Now()),
	}
	alerts[0].SnapshotID = snapID

	err = store.AlertStore().SaveAlerts(ctx, alerts)
	require.NoError(t, err)
	assert.Positive(t, alerts[0].ID)
	assert.Greater(t, alerts[1].ID, alerts[0].ID)

	got, err := store.AlertStore().Unnotified(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first
	assert.Equal(t, alerts[1].ID, got[0].ID)
	assert.Equal(t, domain.AlertHeatSurge, got[1].Type)
	assert.Equal(t, domain.LevelDanger, got[1].Level)
	assert.Equal(t, snapID, got[1].SnapshotID)
	assert.Equal(t, int64(0), got[0].SnapshotID)
	assert.InDelta(t, 850, got[1].TriggerValue, 0.001)
	assert.InDelta(t, 800, got[1].ThresholdValue, 0.001)
	assert.Equal(t, "details", got[1].Body)
	assert.False(t, got[1].Notified)
}

func TestAlertStore_SaveAlerts_Empty(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NoError(t, store.AlertStore().SaveAlerts(context.Background(), nil))
}

func TestAlertStore_SaveAlerts_InvalidLevelRollsBack(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alerts := []domain.Alert{
		testAlert(domain.AlertHeatSurge, domain.LevelDanger, time.Now()),
		testAlert(domain.AlertRankChange, domain.AlertLevel("severe"), time.Now()),
	}

	err := store.AlertStore().SaveAlerts(ctx, alerts)
	require.Error(t, err)
	assert.True(t, domain.IsPersistence(err))
	assert.Zero(t, alerts[0].ID, "ids are only assigned after commit")

	got, err := store.AlertStore().Unnotified(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAlertStore_MarkNotified(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	alerts := []domain.Alert{
		testAlert(domain.AlertHeatSurge, domain.LevelDanger, time.Now()),
		testAlert(domain.AlertFlowPeak, domain.LevelWarning, time.Now()),
		testAlert(domain.AlertFlowDecline, domain.LevelInfo, time.Now()),
	}
	require.NoError(t, store.AlertStore().SaveAlerts(ctx, alerts))

	require.NoError(t, store.AlertStore().MarkNotified(ctx, []int64{alerts[0].ID, alerts[2].ID}))
	require.NoError(t, store.AlertStore().MarkNotified(ctx, nil))

	got, err := store.AlertStore().Unnotified(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alerts[1].ID, got[0].ID)

	recent, err := store.AlertStore().RecentAlerts(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.True(t, recent[0].Notified)
	assert.False(t, recent[1].Notified)
}

func TestAlertStore_RecentAlerts(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	alerts := []domain.Alert{
		testAlert(domain.AlertHeatSurge, domain.LevelDanger, now.Add(-10*24*time.Hour)),
		testAlert(domain.AlertHeatSurge, domain.LevelDanger, now.Add(-2*time.Hour)),
		testAlert(domain.AlertSentimentExtreme, domain.LevelWarning, now.Add(-time.Hour)),
	}
	require.NoError(t, store.AlertStore().SaveAlerts(ctx, alerts))

	tests := []struct {
		name      string
		days      int
		alertType domain.AlertType
		wantIDs   []int64
	}{
		{"all recent", 7, "", []int64{alerts[2].ID, alerts[1].ID}},
		{"filtered by type", 7, domain.AlertHeatSurge, []int64{alerts[1].ID}},
		{"wide window", 30, domain.AlertHeatSurge, []int64{alerts[1].ID, alerts[0].ID}},
		{"no match", 7, domain.AlertViralSpread, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.AlertStore().RecentAlerts(ctx, tt.days, tt.alertType)
			require.NoError(t, err)

			var ids []int64
			for _, a := range got {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestAlertStore_AlertSummary(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()
	alerts := []domain.Alert{
		testAlert(domain.AlertHeatSurge, domain.LevelDanger, now),
		testAlert(domain.AlertHeatSurge, domain.LevelWarning, now),
		testAlert(domain.AlertViralSpread, domain.LevelWarning, now),
		testAlert(domain.AlertFlowDecline, domain.LevelInfo, now.Add(-30*24*time.Hour)),
	}
	require.NoError(t, store.AlertStore().SaveAlerts(ctx, alerts))

	summary, err := store.AlertStore().AlertSummary(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Days)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, map[domain.AlertType]int{
		domain.AlertHeatSurge:   2,
		domain.AlertViralSpread: 1,
	}, summary.ByType)
	assert.Equal(t, map[domain.AlertLevel]int{
		domain.LevelDanger:  1,
		domain.LevelWarning: 2,
	}, summary.ByLevel)
}

func TestAlertStore_SnapshotDeleteKeepsAlert(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	snapID, err := store.SnapshotStore().SaveSnapshot(ctx, testSnapshot(time.Now(), 850))
	require.NoError(t, err)

	alert := testAlert(domain.AlertHeatSurge, domain.LevelDanger, time.Now())
	alert.SnapshotID = snapID
	require.NoError(t, store.AlertStore().SaveAlerts(ctx, []domain.Alert{alert}))

	_, err = store.db.Exec("DELETE FROM flow_snapshots WHERE id = ?", snapID)
	require.NoError(t, err)

	got, err := store.AlertStore().Unnotified(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Zero(t, got[0].SnapshotID)
}

// ==================== Threshold Store Tests ====================

func TestThresholdStore_Seeded(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	entries, err := store.ThresholdStore().ListThresholds(context.Background())
	require.NoError(t, err)

	defaults := domain.DefaultThresholds()
	require.Len(t, entries, len(defaults))
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Key, entries[i].Key, "entries are ordered by key")
	}

	values, err := store.ThresholdStore().Thresholds(context.Background())
	require.NoError(t, err)
	for _, d := range defaults {
		assert.Equal(t, d.Value, values[d.Key], d.Key)
	}
}

func TestThresholdStore_SetThreshold(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.ThresholdStore().SetThreshold(ctx, domain.ThresholdViralK, "1.8"))

	entries, err := store.ThresholdStore().ListThresholds(ctx)
	require.NoError(t, err)

	var found *domain.ThresholdEntry
	for i := range entries {
		if entries[i].Key == domain.ThresholdViralK {
			found = &entries[i]
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, "1.8", found.Value)
	assert.NotEmpty(t, found.Description, "description survives an update")
	assert.False(t, found.UpdatedAt.IsZero())
}

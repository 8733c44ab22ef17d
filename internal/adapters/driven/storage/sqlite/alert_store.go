package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// ==================== Alert Store ====================

// alertStore implements driven.AlertStore.
type alertStore struct {
	store *Store
}

var _ driven.AlertStore = (*alertStore)(nil)

const alertColumns = `id, snapshot_id, alert_type, alert_level, title, content,
	trigger_value, threshold_value, is_notified, created_at`

// SaveAlerts inserts alerts in one transaction and sets their IDs in place.
func (s *alertStore) SaveAlerts(ctx context.Context, alerts []domain.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	ids := make([]int64, len(alerts))
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		for i := range alerts {
			a := &alerts[i]
			createdAt := a.CreatedAt
			if createdAt.IsZero() {
				createdAt = s.store.now()
			}
			res, err := tx.ExecContext(ctx, `
				INSERT INTO flow_alerts (snapshot_id, alert_type, alert_level, title, content,
					trigger_value, threshold_value, is_notified, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, nullID(a.SnapshotID), string(a.Type), string(a.Level), a.Title, nullString(a.Body),
				a.TriggerValue, a.ThresholdValue, boolToInt(a.Notified), formatTime(createdAt))
			if err != nil {
				return fmt.Errorf("inserting alert: %w", err)
			}
			if ids[i], err = res.LastInsertId(); err != nil {
				return fmt.Errorf("reading alert id: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return persistErr("save alerts", err)
	}
	for i := range alerts {
		alerts[i].ID = ids[i]
	}
	return nil
}

// MarkNotified flips the notified flag for the given alert IDs.
func (s *alertStore) MarkNotified(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.store.db.ExecContext(ctx,
		"UPDATE flow_alerts SET is_notified = 1 WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return fmt.Errorf("marking alerts notified: %w", err)
	}
	return nil
}

// Unnotified returns alerts not yet delivered, newest first.
func (s *alertStore) Unnotified(ctx context.Context) ([]domain.Alert, error) {
	return s.query(ctx,
		"SELECT "+alertColumns+" FROM flow_alerts WHERE is_notified = 0 ORDER BY id DESC")
}

// RecentAlerts returns alerts from the last days, newest first.
func (s *alertStore) RecentAlerts(ctx context.Context, days int, alertType domain.AlertType) ([]domain.Alert, error) {
	query := "SELECT " + alertColumns + " FROM flow_alerts WHERE created_at >= ?"
	args := []any{s.cutoff(days)}
	if alertType != "" {
		query += " AND alert_type = ?"
		args = append(args, string(alertType))
	}
	return s.query(ctx, query+" ORDER BY id DESC", args...)
}

// AlertSummary counts alerts from the last days by type and level.
func (s *alertStore) AlertSummary(ctx context.Context, days int) (*domain.AlertSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT alert_type, alert_level, COUNT(*)
		FROM flow_alerts
		WHERE created_at >= ?
		GROUP BY alert_type, alert_level
	`, s.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("querying alert summary: %w", err)
	}
	defer rows.Close()

	summary := &domain.AlertSummary{
		Days:    days,
		ByType:  make(map[domain.AlertType]int),
		ByLevel: make(map[domain.AlertLevel]int),
	}
	for rows.Next() {
		var alertType, level string
		var n int
		if err := rows.Scan(&alertType, &level, &n); err != nil {
			return nil, fmt.Errorf("scanning alert summary: %w", err)
		}
		summary.Total += n
		summary.ByType[domain.AlertType(alertType)] += n
		summary.ByLevel[domain.AlertLevel(level)] += n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alert summary: %w", err)
	}
	return summary, nil
}

func (s *alertStore) cutoff(days int) string {
	return formatTime(s.store.now().Add(-time.Duration(days) * 24 * time.Hour))
}

func (s *alertStore) query(ctx context.Context, query string, args ...any) ([]domain.Alert, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying alerts: %w", err)
	}
	defer rows.Close()

	var alerts []domain.Alert //nolint:prealloc // size unknown from query
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		alerts = append(alerts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating alerts: %w", err)
	}
	return alerts, nil
}

func scanAlert(row scanner) (*domain.Alert, error) {
	var a domain.Alert
	var snapshotID sql.NullInt64
	var alertType, level, createdAt string
	var body sql.NullString
	var trigger, threshold sql.NullFloat64
	var notified int
	if err := row.Scan(&a.ID, &snapshotID, &alertType, &level, &a.Title, &body,
		&trigger, &threshold, &notified, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning alert: %w", err)
	}
	a.SnapshotID = snapshotID.Int64
	a.Type = domain.AlertType(alertType)
	a.Level = domain.AlertLevel(level)
	a.Body = body.String
	a.TriggerValue = trigger.Float64
	a.ThresholdValue = threshold.Float64
	a.Notified = notified == 1
	a.CreatedAt = parseTime(createdAt)
	return &a, nil
}

// ==================== Threshold Store ====================

// thresholdStore implements driven.ThresholdStore over alert_config.
type thresholdStore struct {
	store *Store
}

var _ driven.ThresholdStore = (*thresholdStore)(nil)

// Thresholds returns all key/value pairs.
func (s *thresholdStore) Thresholds(ctx context.Context) (map[string]string, error) {
	entries, err := s.ListThresholds(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Key] = e.Value
	}
	return values, nil
}

// ListThresholds returns all entries with descriptions, ordered by key.
func (s *thresholdStore) ListThresholds(ctx context.Context) ([]domain.ThresholdEntry, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT config_key, config_value, description, updated_at
		FROM alert_config
		ORDER BY config_key
	`)
	if err != nil {
		return nil, fmt.Errorf("querying thresholds: %w", err)
	}
	defer rows.Close()

	var entries []domain.ThresholdEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var e domain.ThresholdEntry
		var desc sql.NullString
		var updatedAt string
		if err := rows.Scan(&e.Key, &e.Value, &desc, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning threshold: %w", err)
		}
		e.Description = desc.String
		e.UpdatedAt = parseTime(updatedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating thresholds: %w", err)
	}
	return entries, nil
}

// SetThreshold upserts a value, keeping the existing description.
func (s *thresholdStore) SetThreshold(ctx context.Context, key, value string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO alert_config (config_key, config_value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(config_key) DO UPDATE SET
			config_value = excluded.config_value,
			updated_at = excluded.updated_at
	`, key, value, formatTime(s.store.now()))
	if err != nil {
		return fmt.Errorf("setting threshold %s: %w", key, err)
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
)

// dailyTopicsPerSnapshot is how many of a snapshot's topics feed the daily rollup.
const dailyTopicsPerSnapshot = 10

// snapshotStore implements driven.SnapshotStore.
type snapshotStore struct {
	store *Store
}

var _ driven.SnapshotStore = (*snapshotStore)(nil)

// recordExtension is the JSON shape of a record's category extension.
type recordExtension struct {
	Finance *domain.FinanceExtension `json:"finance,omitempty"`
	Social  *domain.SocialExtension  `json:"social,omitempty"`
}

const snapshotColumns = `id, version, schema_version, fetch_time, total_platforms, success_count,
	total_score, flow_level, social_score, news_score, finance_score, tech_score, analysis`

// SaveSnapshot persists the snapshot, its children, its sentiment record
// and the day's rollup in one transaction.
func (s *snapshotStore) SaveSnapshot(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	if snap == nil {
		return 0, domain.ErrInvalidInput
	}

	var id int64
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO flow_snapshots (version, schema_version, fetch_time, fetch_date,
				total_platforms, success_count, total_score, flow_level,
				social_score, news_score, finance_score, tech_score, analysis, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, snap.Version, domain.SnapshotSchemaVersion,
			formatTime(snap.FetchTime), localDate(snap.FetchTime),
			snap.TotalPlatforms, snap.SuccessCount, snap.TotalScore, snap.FlowLevel,
			snap.CategoryScores.Social, snap.CategoryScores.News,
			snap.CategoryScores.Finance, snap.CategoryScores.Tech,
			nullString(snap.Analysis), formatTime(s.store.now()))
		if err != nil {
			return fmt.Errorf("inserting snapshot: %w", err)
		}
		if id, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("reading snapshot id: %w", err)
		}

		if err := insertRecords(ctx, tx, id, snap.Records); err != nil {
			return err
		}
		if err := insertRelevant(ctx, tx, id, snap.RelevantRecords); err != nil {
			return err
		}
		if err := insertTopics(ctx, tx, id, snap.HotTopics); err != nil {
			return err
		}
		if snap.Sentiment != nil {
			if err := insertSentiment(ctx, tx, id, snap.Sentiment); err != nil {
				return err
			}
		}
		return s.upsertDailyStat(ctx, tx, snap)
	})
	if err != nil {
		return 0, persistErr("save snapshot", err)
	}
	return id, nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, snapshotID int64, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO platform_news (snapshot_id, source_id, category, title, content, url,
			origin, publish_time, rank, extension)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		r := &records[i]
		ext, err := encodeJSON(recordExtension{Finance: r.Finance, Social: r.Social})
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, snapshotID, r.SourceID, string(r.Category), r.Title,
			nullString(r.Body), nullString(r.URL), nullString(r.Origin), nullString(r.PublishTime),
			r.Rank, ext); err != nil {
			return fmt.Errorf("inserting record: %w", err)
		}
	}
	return nil
}

func insertRelevant(ctx context.Context, tx *sql.Tx, snapshotID int64, relevant []domain.RelevantRecord) error {
	if len(relevant) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stock_related_news (snapshot_id, source_id, category, title, content, url,
			origin, publish_time, rank, matched_keywords, keyword_count, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing relevant insert: %w", err)
	}
	defer stmt.Close()

	for i := range relevant {
		rr := &relevant[i]
		keywords, err := encodeJSON(rr.MatchedKeywords)
		if err != nil {
			return err
		}
		r := &rr.Record
		if _, err := stmt.ExecContext(ctx, snapshotID, r.SourceID, string(r.Category), r.Title,
			nullString(r.Body), nullString(r.URL), nullString(r.Origin), nullString(r.PublishTime),
			r.Rank, keywords, rr.KeywordCount, rr.Score); err != nil {
			return fmt.Errorf("inserting relevant record: %w", err)
		}
	}
	return nil
}

func insertTopics(ctx context.Context, tx *sql.Tx, snapshotID int64, topics []domain.HotTopic) error {
	for i, t := range topics {
		sources, err := encodeJSON(t.Sources)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO hot_topics (snapshot_id, position, topic, count, heat, cross_platform, sources)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, snapshotID, i, t.Topic, t.Count, t.Heat, t.CrossPlatform, sources); err != nil {
			return fmt.Errorf("inserting topic: %w", err)
		}
	}
	return nil
}

func insertSentiment(ctx context.Context, tx *sql.Tx, snapshotID int64, r *domain.SentimentRecord) error {
	recordedAt := r.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO sentiment_records (snapshot_id, sentiment_index, sentiment_class, flow_stage,
			stage_signal, momentum, momentum_level, viral_k, flow_type, risk_level, risk_score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snapshotID, r.SentimentIndex, string(r.SentimentClass), string(r.Stage),
		string(r.StageSignal), r.Momentum, nullString(r.MomentumLevel), r.ViralK,
		nullString(string(r.FlowType)), nullString(r.RiskLevel), r.RiskScore, formatTime(recordedAt))
	if err != nil {
		return fmt.Errorf("inserting sentiment record: %w", err)
	}
	return nil
}

// upsertDailyStat folds the snapshot into its day's rollup.
func (s *snapshotStore) upsertDailyStat(ctx context.Context, tx *sql.Tx, snap *domain.Snapshot) error {
	date := localDate(snap.FetchTime)

	var (
		maxScore, minScore, sum, count int
		topicsJSON                     sql.NullString
		existing                       []domain.TopicCount
	)
	err := tx.QueryRowContext(ctx, `
		SELECT max_score, min_score, score_sum, snapshot_count, top_topics
		FROM flow_statistics WHERE date = ?
	`, date).Scan(&maxScore, &minScore, &sum, &count, &topicsJSON)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		maxScore, minScore = snap.TotalScore, snap.TotalScore
	case err != nil:
		return fmt.Errorf("reading daily stat: %w", err)
	default:
		if err := decodeJSON(topicsJSON, &existing); err != nil {
			return err
		}
		maxScore = max(maxScore, snap.TotalScore)
		minScore = min(minScore, snap.TotalScore)
	}
	sum += snap.TotalScore
	count++
	avg := int(math.Round(float64(sum) / float64(count)))

	limit := dailyTopicsPerSnapshot
	if len(existing) == 0 {
		limit = domain.DailyStatTopTopics
	}
	topics, err := encodeJSON(mergeTopics(existing, snap.HotTopics, limit))
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO flow_statistics (date, avg_score, max_score, min_score, score_sum,
			snapshot_count, top_topics, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			avg_score = excluded.avg_score,
			max_score = excluded.max_score,
			min_score = excluded.min_score,
			score_sum = excluded.score_sum,
			snapshot_count = excluded.snapshot_count,
			top_topics = excluded.top_topics,
			updated_at = excluded.updated_at
	`, date, avg, maxScore, minScore, sum, count, topics, formatTime(s.store.now()))
	if err != nil {
		return fmt.Errorf("upserting daily stat: %w", err)
	}
	return nil
}

// mergeTopics counts one appearance for each of the first limit topics and
// keeps the DailyStatTopTopics most frequent. Ties keep first-seen order.
func mergeTopics(existing []domain.TopicCount, topics []domain.HotTopic, limit int) []domain.TopicCount {
	merged := slices.Clone(existing)
	index := make(map[string]int, len(merged))
	for i, tc := range merged {
		index[tc.Topic] = i
	}
	for i, t := range topics {
		if i >= limit {
			break
		}
		if j, ok := index[t.Topic]; ok {
			merged[j].Count++
			continue
		}
		index[t.Topic] = len(merged)
		merged = append(merged, domain.TopicCount{Topic: t.Topic, Count: 1})
	}

	slices.SortStableFunc(merged, func(a, b domain.TopicCount) int {
		return b.Count - a.Count
	})
	if len(merged) > domain.DailyStatTopTopics {
		merged = merged[:domain.DailyStatTopTopics]
	}
	return merged
}

// GetSnapshot returns a snapshot with its children.
func (s *snapshotStore) GetSnapshot(ctx context.Context, id int64) (*domain.Snapshot, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+snapshotColumns+" FROM flow_snapshots WHERE id = ?", id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadChildren(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestSnapshot returns the most recent snapshot, or nil if none exist.
func (s *snapshotStore) LatestSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return s.snapshotByQuery(ctx, "SELECT id FROM flow_snapshots ORDER BY id DESC LIMIT 1")
}

// LatestSnapshotForDate returns the latest snapshot with at least one
// successful source taken on date, or nil.
func (s *snapshotStore) LatestSnapshotForDate(ctx context.Context, date string) (*domain.Snapshot, error) {
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return nil, fmt.Errorf("date %q: %w", date, domain.ErrInvalidInput)
	}
	return s.snapshotByQuery(ctx, `
		SELECT id FROM flow_snapshots
		WHERE fetch_date = ? AND success_count > 0
		ORDER BY id DESC LIMIT 1
	`, date)
}

// PreviousSnapshot returns the snapshot before the latest, or nil.
func (s *snapshotStore) PreviousSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	return s.snapshotByQuery(ctx, "SELECT id FROM flow_snapshots ORDER BY id DESC LIMIT 1 OFFSET 1")
}

func (s *snapshotStore) snapshotByQuery(ctx context.Context, query string, args ...any) (*domain.Snapshot, error) {
	var id int64
	err := s.store.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}
	return s.GetSnapshot(ctx, id)
}

// RecentSnapshots lists the most recent snapshots, newest first.
func (s *snapshotStore) RecentSnapshots(ctx context.Context, limit int) ([]domain.SnapshotSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, version, fetch_time, total_score, flow_level, success_count
		FROM flow_snapshots
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []domain.SnapshotSummary //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sum domain.SnapshotSummary
		var fetchTime string
		if err := rows.Scan(&sum.ID, &sum.Version, &fetchTime, &sum.TotalScore,
			&sum.FlowLevel, &sum.SuccessCount); err != nil {
			return nil, fmt.Errorf("scanning snapshot summary: %w", err)
		}
		sum.FetchTime = parseTime(fetchTime)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}
	return out, nil
}

// RecentScores returns total scores from the last hours, oldest first.
func (s *snapshotStore) RecentScores(ctx context.Context, hours int) ([]domain.ScorePoint, error) {
	cutoff := s.store.now().Add(-time.Duration(hours) * time.Hour)
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT fetch_time, total_score
		FROM flow_snapshots
		WHERE fetch_time >= ?
		ORDER BY fetch_time ASC, id ASC
	`, formatTime(cutoff))
	if err != nil {
		return nil, fmt.Errorf("querying recent scores: %w", err)
	}
	defer rows.Close()

	var out []domain.ScorePoint //nolint:prealloc // size unknown from query
	for rows.Next() {
		var p domain.ScorePoint
		var at string
		if err := rows.Scan(&at, &p.Score); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		p.At = parseTime(at)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scores: %w", err)
	}
	return out, nil
}

const sentimentColumns = `snapshot_id, sentiment_index, sentiment_class, flow_stage, stage_signal,
	momentum, momentum_level, viral_k, flow_type, risk_level, risk_score, created_at`

// SentimentHistory returns the most recent sentiment records, oldest first.
func (s *snapshotStore) SentimentHistory(ctx context.Context, limit int) ([]domain.SentimentRecord, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+sentimentColumns+" FROM sentiment_records ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying sentiment history: %w", err)
	}
	defer rows.Close()

	var out []domain.SentimentRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		r, err := scanSentiment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sentiment history: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

// DailyStats returns rollups for the last days, oldest first.
func (s *snapshotStore) DailyStats(ctx context.Context, days int) ([]domain.DailyStatistic, error) {
	cutoff := localDate(s.store.now().AddDate(0, 0, -days))
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT date, avg_score, max_score, min_score, snapshot_count, top_topics, updated_at
		FROM flow_statistics
		WHERE date > ?
		ORDER BY date ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("querying daily stats: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyStatistic //nolint:prealloc // size unknown from query
	for rows.Next() {
		var d domain.DailyStatistic
		var topics sql.NullString
		var updatedAt string
		if err := rows.Scan(&d.Date, &d.AvgScore, &d.MaxScore, &d.MinScore,
			&d.SnapshotCount, &topics, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning daily stat: %w", err)
		}
		if err := decodeJSON(topics, &d.TopTopics); err != nil {
			return nil, err
		}
		d.UpdatedAt = parseTime(updatedAt)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily stats: %w", err)
	}
	return out, nil
}

// SaveAnalysis persists an external analysis result.
func (s *snapshotStore) SaveAnalysis(ctx context.Context, r *domain.AnalysisResult) error {
	if r == nil {
		return domain.ErrInvalidInput
	}
	sectors, err := encodeJSON(r.AffectedSectors)
	if err != nil {
		return err
	}
	stocks, err := encodeJSON(r.RecommendedStocks)
	if err != nil {
		return err
	}
	factors, err := encodeJSON(r.RiskFactors)
	if err != nil {
		return err
	}
	createdAt := r.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.store.now()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO ai_analysis (snapshot_id, affected_sectors, recommended_stocks, risk_level,
			risk_factors, advice, confidence, summary, model_used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, nullID(r.SnapshotID), sectors, stocks, nullString(r.RiskLevel), factors,
		nullString(r.Advice), r.Confidence, nullString(r.Summary), nullString(r.Model),
		formatTime(createdAt))
	if err != nil {
		return persistErr("save analysis", err)
	}
	return nil
}

// LatestAnalysis returns the most recent analysis, or nil.
func (s *snapshotStore) LatestAnalysis(ctx context.Context) (*domain.AnalysisResult, error) {
	var (
		r                        domain.AnalysisResult
		snapshotID               sql.NullInt64
		sectors, stocks, factors sql.NullString
		riskLevel, advice        sql.NullString
		summary, model           sql.NullString
		confidence               sql.NullFloat64
		createdAt                string
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT snapshot_id, affected_sectors, recommended_stocks, risk_level, risk_factors,
			advice, confidence, summary, model_used, created_at
		FROM ai_analysis
		ORDER BY id DESC LIMIT 1
	`).Scan(&snapshotID, &sectors, &stocks, &riskLevel, &factors,
		&advice, &confidence, &summary, &model, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying analysis: %w", err)
	}

	for _, col := range []struct {
		src sql.NullString
		dst *[]string
	}{
		{sectors, &r.AffectedSectors},
		{stocks, &r.RecommendedStocks},
		{factors, &r.RiskFactors},
	} {
		if err := decodeJSON(col.src, col.dst); err != nil {
			return nil, err
		}
	}
	r.SnapshotID = snapshotID.Int64
	r.RiskLevel = riskLevel.String
	r.Advice = advice.String
	r.Confidence = confidence.Float64
	r.Summary = summary.String
	r.Model = model.String
	r.CreatedAt = parseTime(createdAt)
	return &r, nil
}

// ==================== Child loading ====================

func (s *snapshotStore) loadChildren(ctx context.Context, snap *domain.Snapshot) error {
	var err error
	if snap.Records, err = s.loadRecords(ctx, snap.ID); err != nil {
		return err
	}
	if snap.RelevantRecords, err = s.loadRelevant(ctx, snap.ID); err != nil {
		return err
	}
	if snap.HotTopics, err = s.loadTopics(ctx, snap.ID); err != nil {
		return err
	}
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+sentimentColumns+" FROM sentiment_records WHERE snapshot_id = ?", snap.ID)
	sentiment, err := scanSentiment(row)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return err
	default:
		snap.Sentiment = sentiment
	}
	return nil
}

func (s *snapshotStore) loadRecords(ctx context.Context, snapshotID int64) ([]domain.Record, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_id, category, title, content, url, origin, publish_time, rank, extension
		FROM platform_news WHERE snapshot_id = ? ORDER BY id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []domain.Record //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.Record
		var category string
		var body, url, origin, publish, extension sql.NullString
		if err := rows.Scan(&r.SourceID, &category, &r.Title, &body, &url, &origin,
			&publish, &r.Rank, &extension); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Category = domain.Category(category)
		r.Body, r.URL, r.Origin, r.PublishTime = body.String, url.String, origin.String, publish.String

		var ext recordExtension
		if err := decodeJSON(extension, &ext); err != nil {
			return nil, err
		}
		r.Finance, r.Social = ext.Finance, ext.Social
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return out, nil
}

func (s *snapshotStore) loadRelevant(ctx context.Context, snapshotID int64) ([]domain.RelevantRecord, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_id, category, title, content, url, origin, publish_time, rank,
			matched_keywords, keyword_count, score
		FROM stock_related_news WHERE snapshot_id = ? ORDER BY id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying relevant records: %w", err)
	}
	defer rows.Close()

	var out []domain.RelevantRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rr domain.RelevantRecord
		var category string
		var body, url, origin, publish, keywords sql.NullString
		r := &rr.Record
		if err := rows.Scan(&r.SourceID, &category, &r.Title, &body, &url, &origin,
			&publish, &r.Rank, &keywords, &rr.KeywordCount, &rr.Score); err != nil {
			return nil, fmt.Errorf("scanning relevant record: %w", err)
		}
		r.Category = domain.Category(category)
		r.Body, r.URL, r.Origin, r.PublishTime = body.String, url.String, origin.String, publish.String
		if err := decodeJSON(keywords, &rr.MatchedKeywords); err != nil {
			return nil, err
		}
		out = append(out, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating relevant records: %w", err)
	}
	return out, nil
}

func (s *snapshotStore) loadTopics(ctx context.Context, snapshotID int64) ([]domain.HotTopic, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT topic, count, heat, cross_platform, sources
		FROM hot_topics WHERE snapshot_id = ? ORDER BY position
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying topics: %w", err)
	}
	defer rows.Close()

	var out []domain.HotTopic //nolint:prealloc // size unknown from query
	for rows.Next() {
		var t domain.HotTopic
		var sources sql.NullString
		if err := rows.Scan(&t.Topic, &t.Count, &t.Heat, &t.CrossPlatform, &sources); err != nil {
			return nil, fmt.Errorf("scanning topic: %w", err)
		}
		if err := decodeJSON(sources, &t.Sources); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating topics: %w", err)
	}
	return out, nil
}

// ==================== Scanners ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*domain.Snapshot, error) {
	var snap domain.Snapshot
	var schemaVersion int
	var fetchTime string
	var analysis sql.NullString
	c := &snap.CategoryScores
	if err := row.Scan(&snap.ID, &snap.Version, &schemaVersion, &fetchTime,
		&snap.TotalPlatforms, &snap.SuccessCount, &snap.TotalScore, &snap.FlowLevel,
		&c.Social, &c.News, &c.Finance, &c.Tech, &analysis); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning snapshot: %w", err)
	}
	if schemaVersion > domain.SnapshotSchemaVersion {
		return nil, fmt.Errorf("snapshot %d has schema version %d, newer than supported %d",
			snap.ID, schemaVersion, domain.SnapshotSchemaVersion)
	}
	snap.FetchTime = parseTime(fetchTime)
	snap.Analysis = analysis.String
	return &snap, nil
}

func scanSentiment(row scanner) (*domain.SentimentRecord, error) {
	var r domain.SentimentRecord
	var class, stage, signal string
	var momentumLevel, flowType, riskLevel sql.NullString
	var createdAt string
	if err := row.Scan(&r.SnapshotID, &r.SentimentIndex, &class, &stage, &signal,
		&r.Momentum, &momentumLevel, &r.ViralK, &flowType, &riskLevel, &r.RiskScore,
		&createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning sentiment record: %w", err)
	}
	r.SentimentClass = domain.SentimentClass(class)
	r.Stage = domain.Stage(stage)
	r.StageSignal = domain.Signal(signal)
	r.MomentumLevel = momentumLevel.String
	r.FlowType = domain.FlowType(flowType.String)
	r.RiskLevel = riskLevel.String
	r.RecordedAt = parseTime(createdAt)
	return &r, nil
}

// localDate is the calendar day key used for rollups and date lookups.
func localDate(t time.Time) string {
	return t.Local().Format(time.DateOnly)
}

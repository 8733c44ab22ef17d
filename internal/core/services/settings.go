package services

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driven"
	"github.com/custodia-labs/flowwatch/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.Settings = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyDataDir          = "data.dir"
	keyVocabularyPath   = "vocabulary.path"
	keyAPIBaseURL       = "source.api_base_url"
	keyFetchTimeout     = "source.fetch_timeout_seconds"
	keyRequestDelay     = "source.request_delay_ms"
	keyAnalysisAPIKey   = "analysis.api_key"
	keyAnalysisBaseURL  = "analysis.base_url"
	keyAnalysisModel    = "analysis.model"
	keyAnalysisTimeout  = "analysis.timeout_seconds"
	keyValkeyAddr       = "valkey.addr"
	keyValkeyPassword   = "valkey.password"
	keyHistoryHours     = "history.hours"
	keySentimentHistory = "history.sentiment_points"
	keyHotTopicCount    = "topics.count"
	keySchedulerEnabled = "scheduler.enabled"
)

// Environment variables that override config file keys.
var envOverrides = map[string]string{
	"FLOWWATCH_DATA_DIR":          keyDataDir,
	"FLOWWATCH_VOCABULARY":        keyVocabularyPath,
	"FLOWWATCH_API_BASE_URL":      keyAPIBaseURL,
	"FLOWWATCH_ANALYSIS_API_KEY":  keyAnalysisAPIKey,
	"FLOWWATCH_ANALYSIS_BASE_URL": keyAnalysisBaseURL,
	"FLOWWATCH_ANALYSIS_MODEL":    keyAnalysisModel,
	"FLOWWATCH_VALKEY_ADDR":       keyValkeyAddr,
	"FLOWWATCH_VALKEY_PASSWORD":   keyValkeyPassword,
}

// SettingsService resolves runtime settings from the config store and
// the environment. Environment values win over the file.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get resolves the current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		DataDir:        s.getString(keyDataDir, d.DataDir),
		VocabularyPath: s.getString(keyVocabularyPath, d.VocabularyPath),
		APIBaseURL:     strings.TrimRight(s.getString(keyAPIBaseURL, d.APIBaseURL), "/"),
		FetchTimeout:   s.getDuration(keyFetchTimeout, time.Second, d.FetchTimeout),
		RequestDelay:   s.getDuration(keyRequestDelay, time.Millisecond, d.RequestDelay),
		Analysis: domain.AnalysisSettings{
			APIKey:  s.getString(keyAnalysisAPIKey, ""),
			BaseURL: s.getString(keyAnalysisBaseURL, d.Analysis.BaseURL),
			Model:   s.getString(keyAnalysisModel, d.Analysis.Model),
			Timeout: s.getDuration(keyAnalysisTimeout, time.Second, d.Analysis.Timeout),
		},
		ValkeyAddr:       s.getString(keyValkeyAddr, ""),
		ValkeyPassword:   s.getString(keyValkeyPassword, ""),
		HistoryHours:     s.getInt(keyHistoryHours, d.HistoryHours),
		SentimentHistory: s.getInt(keySentimentHistory, d.SentimentHistory),
		HotTopicCount:    s.getInt(keyHotTopicCount, d.HotTopicCount),
		Scheduler:        s.schedulerConfig(d.Scheduler),
	}

	if err := validateSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// schedulerConfig overlays per-task keys of the form
// scheduler.<task>.enabled and scheduler.<task>.interval_minutes.
func (s *SettingsService) schedulerConfig(defaults domain.SchedulerConfig) domain.SchedulerConfig {
	cfg := domain.SchedulerConfig{
		Enabled:     s.getBool(keySchedulerEnabled, defaults.Enabled),
		Tick:        defaults.Tick,
		TaskConfigs: make(map[string]domain.TaskConfig, len(defaults.TaskConfigs)),
	}
	for id, tc := range defaults.TaskConfigs {
		prefix := "scheduler." + id + "."
		cfg.TaskConfigs[id] = domain.TaskConfig{
			Enabled:  s.getBool(prefix+"enabled", tc.Enabled),
			Interval: s.getDuration(prefix+"interval_minutes", time.Minute, tc.Interval),
		}
	}
	return cfg
}

// SetTask persists a task's enabled flag and interval to the config file.
func (s *SettingsService) SetTask(taskID string, enabled bool, interval time.Duration) error {
	if _, ok := domain.LookupTask(taskID); !ok {
		return fmt.Errorf("%w: %s", domain.ErrTaskUnknown, taskID)
	}
	prefix := "scheduler." + taskID + "."
	if err := s.configStore.Set(prefix+"enabled", enabled); err != nil {
		return err
	}
	return s.configStore.Set(prefix+"interval_minutes", int64(interval/time.Minute))
}

// SetAnalysis persists the analysis endpoint configuration.
func (s *SettingsService) SetAnalysis(apiKey, baseURL, model string) error {
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("%w: API key is required", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyAnalysisAPIKey, strings.TrimSpace(apiKey)); err != nil {
		return err
	}
	if baseURL != "" {
		if err := s.configStore.Set(keyAnalysisBaseURL, strings.TrimRight(baseURL, "/")); err != nil {
			return err
		}
	}
	if model != "" {
		return s.configStore.Set(keyAnalysisModel, model)
	}
	return nil
}

func validateSettings(s *domain.AppSettings) error {
	if s.FetchTimeout <= 0 {
		return fmt.Errorf("%w: fetch timeout must be positive", domain.ErrInvalidInput)
	}
	if s.RequestDelay < 0 {
		return fmt.Errorf("%w: request delay must not be negative", domain.ErrInvalidInput)
	}
	for id, tc := range s.Scheduler.TaskConfigs {
		if tc.Interval < time.Minute {
			return fmt.Errorf("%w: task %s interval must be at least one minute", domain.ErrInvalidInput, id)
		}
	}
	return nil
}

// lookup returns the env override for key, if any.
func (s *SettingsService) lookup(key string) (string, bool) {
	for env, k := range envOverrides {
		if k == key {
			if v := s.getenv(env); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v, ok := s.lookup(key); ok {
		return v
	}
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if v, ok := s.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	n := s.getInt(key, 0)
	if n == 0 {
		return defaultVal
	}
	return time.Duration(n) * unit
}

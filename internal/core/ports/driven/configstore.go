package driven

// ConfigStore holds flowwatch's persisted settings as flat dotted keys
// such as "source.api_base_url" or "scheduler.sync_hotspots.enabled".
// Typed getters return the zero value for missing keys and for values of
// another type, so callers check Get when zero is meaningful.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set writes the value through to storage before returning.
	Set(key string, value any) error

	Save() error

	// Load replaces the in-memory keys with what storage holds. A missing
	// file loads as empty.
	Load() error

	// Path returns the backing file location.
	Path() string
}

package domain

// SettingsRepository persists the configuration between sessions. Load() is expected to
// migrate older persisted shapes and to substitute defaults when nothing usable exists.
// Save() may be debounced by the implementation; sequence order of steps must survive
// save/load round-trips.
type SettingsRepository interface {
	Load() (*Configuration, error)
	Save(config *Configuration) error
}

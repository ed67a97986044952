package filesystem

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

const (
	// ConfigKeySettingsPath file path where the refinement settings are persisted
	ConfigKeySettingsPath = "settingsPath"
	// ConfigKeySettingsSaveDelay how long to coalesce setting mutations before writing them out, in milliseconds
	ConfigKeySettingsSaveDelay = "settingsSaveDelay"
)

type jsonStep struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Enabled      bool   `json:"enabled"`
	Instructions string `json:"instructions"`
}

type jsonConfiguration struct {
	Enabled         bool        `json:"enabled"`
	RefinementSteps []*jsonStep `json:"refinementSteps"`
}

// SettingsRepository persists the configuration as a JSON file. Saves are debounced: a burst
// of mutations results in a single write after the configured delay. Stop() flushes a pending
// save, so call it before the process exits.
type SettingsRepository struct {
	mutex     sync.Mutex
	path      string
	pending   *domain.Configuration
	debouncer *common.Debouncer
	logger    common.Logger
}

func NewSettingsRepository(config *common.Config, logger common.Logger) *SettingsRepository {
	return NewSettingsRepositoryWithPath(config.GetStringOrDefault(ConfigKeySettingsPath, "settings.json"), config, logger)
}

func NewSettingsRepositoryWithPath(path string, config *common.Config, logger common.Logger) *SettingsRepository {
	repository := &SettingsRepository{
		path:   path,
		logger: logger,
	}
	saveDelay := config.GetDurationOrDefault(ConfigKeySettingsSaveDelay, time.Second)
	repository.debouncer = common.NewDebouncer(repository.flushPending, saveDelay, logger)
	return repository
}

// Load reads the persisted configuration. An older persisted shape is migrated once; a missing
// or unusable file yields the built-in defaults.
func (s *SettingsRepository) Load() (*domain.Configuration, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.NewDefaultConfiguration(), nil
		}
		return nil, errors.Wrap(err, "unable to read settings")
	}
	var jsonConfig jsonConfiguration
	err = json.Unmarshal(data, &jsonConfig)
	if err == nil && jsonConfig.RefinementSteps != nil {
		return configurationFromJSON(&jsonConfig), nil
	}
	// Not the current shape: either the legacy schema or a broken file. Migration substitutes
	// defaults when it finds nothing usable.
	config := migrateLegacyConfiguration(data, s.logger)
	err = s.Save(config)
	if err != nil {
		return nil, err
	}
	return config, nil
}

// Save schedules a debounced write of the given configuration snapshot.
func (s *SettingsRepository) Save(config *domain.Configuration) error {
	s.mutex.Lock()
	s.pending = config.Clone()
	s.mutex.Unlock()
	s.debouncer.Trigger()
	return nil
}

// Flush writes a pending configuration immediately, bypassing the debounce delay.
func (s *SettingsRepository) Flush() error {
	return s.flushPending()
}

func (s *SettingsRepository) Stop() {
	s.debouncer.Stop()
}

func (s *SettingsRepository) flushPending() error {
	s.mutex.Lock()
	pending := s.pending
	s.pending = nil
	s.mutex.Unlock()
	if pending == nil {
		return nil
	}
	data, err := json.MarshalIndent(configurationToJSON(pending), "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to serialize settings")
	}
	err = os.WriteFile(s.path, data, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to write settings")
	}
	return nil
}

func configurationFromJSON(jsonConfig *jsonConfiguration) *domain.Configuration {
	config := &domain.Configuration{
		Enabled: jsonConfig.Enabled,
	}
	for _, step := range jsonConfig.RefinementSteps {
		config.Steps = append(config.Steps, &domain.RefinementStep{
			ID:           step.ID,
			Label:        step.Label,
			Enabled:      step.Enabled,
			Instructions: step.Instructions,
		})
	}
	return config
}

func configurationToJSON(config *domain.Configuration) *jsonConfiguration {
	jsonConfig := &jsonConfiguration{
		Enabled:         config.Enabled,
		RefinementSteps: []*jsonStep{},
	}
	for _, step := range config.Steps {
		jsonConfig.RefinementSteps = append(jsonConfig.RefinementSteps, &jsonStep{
			ID:           step.ID,
			Label:        step.Label,
			Enabled:      step.Enabled,
			Instructions: step.Instructions,
		})
	}
	return jsonConfig
}

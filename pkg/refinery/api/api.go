package api

import (
	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
	"kgeyst.com/refinery/pkg/refinery/infrastructure/console"
	"kgeyst.com/refinery/pkg/refinery/infrastructure/filesystem"
	"kgeyst.com/refinery/pkg/refinery/infrastructure/llamacpp"
	"kgeyst.com/refinery/pkg/refinery/infrastructure/logging"
)

// See domain/config.go and the infrastructure packages
const (
	ConfigKeyLogPath           = domain.ConfigKeyLogPath
	ConfigKeySettingsPath      = filesystem.ConfigKeySettingsPath
	ConfigKeySettingsSaveDelay = filesystem.ConfigKeySettingsSaveDelay
)

type api struct {
	refinementService  *domain.RefinementService
	settingsService    *domain.SettingsService
	settingsRepository *filesystem.SettingsRepository
}

// API is the entrypoint to Refinery. It shouldn't contain any logic of its own; it glues all
// the components together and provides a public interface for the refinement pipeline and its
// settings. This API can be used in various contexts: in an IRC chat, console input/output etc.
type API interface {
	// Refine passes `text` through every enabled refinement step, in the order the steps were
	// configured, and returns the final text. It never fails: a failing step is reported and
	// skipped, and with refinement switched off the text is returned as is.
	Refine(text string) string
	// IsEnabled reports the state of the master switch.
	IsEnabled() bool
	// SetEnabled flips the master switch. With `enabled` set to false, Refine becomes a no-op.
	SetEnabled(enabled bool)
	// Steps returns the ordered list of configured refinement steps.
	Steps() []*domain.RefinementStep
	// AppendStep adds a new refinement step at the end of the sequence.
	AppendStep(label, instructions string, enabled bool) *domain.RefinementStep
	// UpdateStepAt replaces the fields of the step at the given position.
	UpdateStepAt(index int, label string, enabled bool, instructions string) error
	// RemoveStepAt removes the step at the given position.
	RemoveStepAt(index int) error
	// MoveStepToEnd reorders the sequence by moving the step at the given position to the end.
	MoveStepToEnd(index int) error
	// Stop flushes pending settings writes. Call it before the process exits.
	Stop()
}

// NewAPI wires the default production setup: the llama.cpp generator behind a logging
// decorator, and settings persisted as a JSON file. A nil `notifier` falls back to the
// console notifier.
func NewAPI(config *common.Config, notifier domain.Notifier) (API, error) {
	logger := common.NewFileLogger(config.GetStringOrDefault(ConfigKeyLogPath, "log.txt"))
	if notifier == nil {
		notifier = console.NewNotifier()
	}
	textGenerator := logging.NewTextGeneratorDecorator(llamacpp.NewTextGenerator(config, logger), logger)
	settingsRepository := filesystem.NewSettingsRepository(config, logger)
	settingsService, err := domain.NewSettingsService(settingsRepository, logger)
	if err != nil {
		return nil, err
	}
	return &api{
		refinementService:  domain.NewRefinementService(textGenerator, notifier, logger),
		settingsService:    settingsService,
		settingsRepository: settingsRepository,
	}, nil
}

func (a *api) Refine(text string) string {
	// The configuration is snapshotted once per run: edits made while a run is in flight only
	// apply to the next run.
	return a.refinementService.Refine(text, a.settingsService.Configuration())
}

func (a *api) IsEnabled() bool {
	return a.settingsService.IsEnabled()
}

func (a *api) SetEnabled(enabled bool) {
	a.settingsService.SetEnabled(enabled)
}

func (a *api) Steps() []*domain.RefinementStep {
	return a.settingsService.Configuration().Steps
}

func (a *api) AppendStep(label, instructions string, enabled bool) *domain.RefinementStep {
	return a.settingsService.AppendStep(label, instructions, enabled)
}

func (a *api) UpdateStepAt(index int, label string, enabled bool, instructions string) error {
	return a.settingsService.UpdateStepAt(index, label, enabled, instructions)
}

func (a *api) RemoveStepAt(index int) error {
	return a.settingsService.RemoveStepAt(index)
}

func (a *api) MoveStepToEnd(index int) error {
	return a.settingsService.MoveStepToEnd(index)
}

func (a *api) Stop() {
	a.settingsRepository.Stop()
}

package domain

import (
	"errors"
	"sync"

	"kgeyst.com/refinery/pkg/common"
)

var ErrStepNotFound = errors.New("step not found")

// SettingsService owns the live configuration for the lifetime of the process and is the only
// place which mutates it. Every mutation is written through to the repository (which may
// debounce the actual write); sequence order of the steps is always preserved.
type SettingsService struct {
	mutex      sync.Mutex
	repository SettingsRepository
	config     *Configuration
	logger     common.Logger
}

func NewSettingsService(repository SettingsRepository, logger common.Logger) (*SettingsService, error) {
	config, err := repository.Load()
	if err != nil {
		return nil, err
	}
	return &SettingsService{
		repository: repository,
		config:     config,
		logger:     logger,
	}, nil
}

// Configuration returns a deep copy so that callers (a refinement run, a save) never observe
// mutations made after the call.
func (s *SettingsService) Configuration() *Configuration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.config.Clone()
}

func (s *SettingsService) IsEnabled() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.config.Enabled
}

func (s *SettingsService) SetEnabled(enabled bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.config.Enabled = enabled
	s.save()
}

func (s *SettingsService) AppendStep(label, instructions string, enabled bool) *RefinementStep {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	step := NewRefinementStep(label, instructions, enabled)
	s.config.Steps = append(s.config.Steps, step)
	s.save()
	return step.Clone()
}

func (s *SettingsService) UpdateStepAt(index int, label string, enabled bool, instructions string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if index < 0 || index >= len(s.config.Steps) {
		return ErrStepNotFound
	}
	step := s.config.Steps[index]
	step.Label = label
	step.Enabled = enabled
	step.Instructions = instructions
	s.save()
	return nil
}

func (s *SettingsService) RemoveStepAt(index int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if index < 0 || index >= len(s.config.Steps) {
		return ErrStepNotFound
	}
	s.config.Steps = append(s.config.Steps[:index], s.config.Steps[index+1:]...)
	s.save()
	return nil
}

// MoveStepToEnd reorders by removal+append: the step at `index` becomes the last step.
func (s *SettingsService) MoveStepToEnd(index int) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if index < 0 || index >= len(s.config.Steps) {
		return ErrStepNotFound
	}
	step := s.config.Steps[index]
	s.config.Steps = append(s.config.Steps[:index], s.config.Steps[index+1:]...)
	s.config.Steps = append(s.config.Steps, step)
	s.save()
	return nil
}

func (s *SettingsService) save() {
	err := s.repository.Save(s.config.Clone())
	if err != nil {
		s.logger.Log("failed to save settings: " + err.Error() + "\n")
	}
}

package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

type fakeSettingsRepository struct {
	stored *domain.Configuration
	saves  int
}

func (f *fakeSettingsRepository) Load() (*domain.Configuration, error) {
	if f.stored == nil {
		return domain.NewDefaultConfiguration(), nil
	}
	return f.stored.Clone(), nil
}

func (f *fakeSettingsRepository) Save(config *domain.Configuration) error {
	f.stored = config.Clone()
	f.saves++
	return nil
}

func newSettingsService(t *testing.T, repository *fakeSettingsRepository) *domain.SettingsService {
	service, err := domain.NewSettingsService(repository, common.NewNullLogger())
	require.NoError(t, err)
	return service
}

func stepLabels(config *domain.Configuration) []string {
	var labels []string
	for _, step := range config.Steps {
		labels = append(labels, step.Label)
	}
	return labels
}

func TestSettingsServiceLoadsDefaults(t *testing.T) {
	service := newSettingsService(t, &fakeSettingsRepository{})

	config := service.Configuration()

	assert.True(t, config.Enabled)
	assert.Equal(t, []string{"Cohesion Check", "Improve Detail"}, stepLabels(config))
}

func TestSettingsServiceAppendPreservesOrder(t *testing.T) {
	repository := &fakeSettingsRepository{}
	service := newSettingsService(t, repository)

	service.AppendStep("Tone Check", "check the tone", true)

	assert.Equal(t, []string{"Cohesion Check", "Improve Detail", "Tone Check"}, stepLabels(service.Configuration()))
	assert.Equal(t, 1, repository.saves)
	assert.Equal(t, []string{"Cohesion Check", "Improve Detail", "Tone Check"}, stepLabels(repository.stored))
}

func TestSettingsServiceUpdateStepAt(t *testing.T) {
	repository := &fakeSettingsRepository{}
	service := newSettingsService(t, repository)

	err := service.UpdateStepAt(0, "Renamed", false, "new instructions")

	require.NoError(t, err)
	step := service.Configuration().Steps[0]
	assert.Equal(t, "Renamed", step.Label)
	assert.False(t, step.Enabled)
	assert.Equal(t, "new instructions", step.Instructions)
}

func TestSettingsServiceUpdateStepAtOutOfRange(t *testing.T) {
	service := newSettingsService(t, &fakeSettingsRepository{})

	err := service.UpdateStepAt(5, "Renamed", false, "new instructions")

	assert.ErrorIs(t, err, domain.ErrStepNotFound)
}

func TestSettingsServiceRemoveStepAt(t *testing.T) {
	repository := &fakeSettingsRepository{}
	service := newSettingsService(t, repository)

	err := service.RemoveStepAt(0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Improve Detail"}, stepLabels(service.Configuration()))
	assert.Equal(t, []string{"Improve Detail"}, stepLabels(repository.stored))
}

func TestSettingsServiceMoveStepToEnd(t *testing.T) {
	service := newSettingsService(t, &fakeSettingsRepository{})
	service.AppendStep("Tone Check", "check the tone", true)

	err := service.MoveStepToEnd(0)

	require.NoError(t, err)
	assert.Equal(t, []string{"Improve Detail", "Tone Check", "Cohesion Check"}, stepLabels(service.Configuration()))
}

func TestSettingsServiceSetEnabled(t *testing.T) {
	repository := &fakeSettingsRepository{}
	service := newSettingsService(t, repository)

	service.SetEnabled(false)

	assert.False(t, service.IsEnabled())
	assert.False(t, repository.stored.Enabled)
}

func TestSettingsServiceConfigurationIsASnapshot(t *testing.T) {
	service := newSettingsService(t, &fakeSettingsRepository{})

	snapshot := service.Configuration()
	service.AppendStep("Tone Check", "check the tone", true)

	assert.Len(t, snapshot.Steps, 2)
	assert.Len(t, service.Configuration().Steps, 3)
}

func TestSettingsServiceAllowsDuplicateLabels(t *testing.T) {
	service := newSettingsService(t, &fakeSettingsRepository{})

	first := service.AppendStep("Tone Check", "check the tone", true)
	second := service.AppendStep("Tone Check", "check the tone again", true)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, service.Configuration().Steps, 4)
}

package domain_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

type fakeTextGenerator struct {
	prompts      []string
	completeFunc func(prompt string) (string, error)
}

func (f *fakeTextGenerator) Name() string {
	return "fake"
}

func (f *fakeTextGenerator) Complete(prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.completeFunc(prompt)
}

type fakeNotifier struct {
	messages []string
}

func (f *fakeNotifier) Notify(message string) {
	f.messages = append(f.messages, message)
}

func newService(generator *fakeTextGenerator, notifier *fakeNotifier) *domain.RefinementService {
	return domain.NewRefinementService(generator, notifier, common.NewNullLogger())
}

func newConfiguration(steps ...*domain.RefinementStep) *domain.Configuration {
	return &domain.Configuration{
		Enabled: true,
		Steps:   steps,
	}
}

func TestRefineDisabledConfiguration(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "SHOULD NEVER HAPPEN", nil
	}}
	config := newConfiguration(domain.NewRefinementStep("Cohesion Check", "check cohesion", true))
	config.Enabled = false
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("hello there", config)

	assert.Equal(t, "hello there", result)
	assert.Empty(t, generator.prompts)
}

func TestRefineNoEnabledSteps(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "SHOULD NEVER HAPPEN", nil
	}}
	config := newConfiguration(
		domain.NewRefinementStep("Cohesion Check", "check cohesion", false),
		domain.NewRefinementStep("Improve Detail", "improve detail", false),
	)
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("hello there", config)

	assert.Equal(t, "hello there", result)
	assert.Empty(t, generator.prompts)
}

func TestRefineBlankInstructionsSkipped(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "SHOULD NEVER HAPPEN", nil
	}}
	config := newConfiguration(domain.NewRefinementStep("Empty", "   \n\t ", true))
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("hello there", config)

	assert.Equal(t, "hello there", result)
	assert.Empty(t, generator.prompts)
}

func TestRefineAlreadyCompliantText(t *testing.T) {
	// The model judges no edits are needed and echoes the draft back (with some whitespace).
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "  hello there \n", nil
	}}
	config := newConfiguration(domain.NewRefinementStep("Cohesion Check", "check cohesion", true))
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("hello there", config)

	assert.Equal(t, "hello there", result)
	assert.Len(t, generator.prompts, 1)
}

func TestRefineSingleStep(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "REFINED", nil
	}}
	config := newConfiguration(domain.NewRefinementStep("Cohesion Check", "check cohesion", true))
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("hello there", config)

	assert.Equal(t, "REFINED", result)
}

func TestRefinePromptDelimitsTextAndInstructions(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "REFINED", nil
	}}
	config := newConfiguration(domain.NewRefinementStep("Cohesion Check", "check cohesion", true))
	service := newService(generator, &fakeNotifier{})

	service.Refine("hello there", config)

	require.Len(t, generator.prompts, 1)
	prompt := generator.prompts[0]
	assert.Contains(t, prompt, "check cohesion")
	assert.Contains(t, prompt, "hello there")
	assert.Less(t, strings.Index(prompt, "check cohesion"), strings.Index(prompt, "hello there"))
}

func TestRefineSequentialChaining(t *testing.T) {
	generator := &fakeTextGenerator{}
	generator.completeFunc = func(prompt string) (string, error) {
		if len(generator.prompts) == 1 {
			return "OUTPUT OF A", nil
		}
		return "OUTPUT OF B", nil
	}
	config := newConfiguration(
		domain.NewRefinementStep("A", "instructions of A", true),
		domain.NewRefinementStep("B", "instructions of B", true),
	)
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("original input", config)

	require.Len(t, generator.prompts, 2)
	// B must see A's output, not the original input.
	assert.Contains(t, generator.prompts[1], "OUTPUT OF A")
	assert.NotContains(t, generator.prompts[1], "original input")
	assert.Equal(t, "OUTPUT OF B", result)
}

func TestRefineFailedStepIsSkipped(t *testing.T) {
	generator := &fakeTextGenerator{}
	generator.completeFunc = func(prompt string) (string, error) {
		if len(generator.prompts) == 1 {
			return "", errors.New("model exploded")
		}
		return "OUTPUT OF B", nil
	}
	notifier := &fakeNotifier{}
	config := newConfiguration(
		domain.NewRefinementStep("A", "instructions of A", true),
		domain.NewRefinementStep("B", "instructions of B", true),
	)
	service := newService(generator, notifier)

	result := service.Refine("original input", config)

	require.Len(t, generator.prompts, 2)
	// A failed, so B must still see the original input.
	assert.Contains(t, generator.prompts[1], "original input")
	assert.Equal(t, "OUTPUT OF B", result)
	require.Len(t, notifier.messages, 1)
	assert.Contains(t, notifier.messages[0], "A")
}

func TestRefineBlankResponseKeepsWorkingText(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "   \n ", nil
	}}
	config := newConfiguration(domain.NewRefinementStep("Cohesion Check", "check cohesion", true))
	service := newService(generator, &fakeNotifier{})

	result := service.Refine("hello there", config)

	assert.Equal(t, "hello there", result)
}

func TestRefineMixedEnabledAndDisabledSteps(t *testing.T) {
	generator := &fakeTextGenerator{completeFunc: func(prompt string) (string, error) {
		return "REFINED", nil
	}}
	config := newConfiguration(
		domain.NewRefinementStep("A", "instructions of A", false),
		domain.NewRefinementStep("B", "instructions of B", true),
	)
	service := newService(generator, &fakeNotifier{})

	service.Refine("original input", config)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], "instructions of B")
	assert.NotContains(t, generator.prompts[0], "instructions of A")
}

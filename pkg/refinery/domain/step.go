package domain

import (
	"github.com/google/uuid"
)

// RefinementStep is one ordered unit of the refinement pipeline. Labels are display names and
// don't have to be unique; the ID is what CRUD surfaces use to tell steps apart.
type RefinementStep struct {
	ID           string
	Label        string
	Enabled      bool
	Instructions string
}

func NewRefinementStep(label, instructions string, enabled bool) *RefinementStep {
	return &RefinementStep{
		ID:           uuid.NewString(),
		Label:        label,
		Enabled:      enabled,
		Instructions: instructions,
	}
}

func (s *RefinementStep) Clone() *RefinementStep {
	clone := *s
	return &clone
}

// Configuration holds the master switch and the ordered sequence of refinement steps.
// Pipeline execution order is the slice order, not label order.
type Configuration struct {
	Enabled bool
	Steps   []*RefinementStep
}

// NewDefaultConfiguration is used when no configuration has been persisted yet, or when
// migration of an older configuration yields nothing usable.
func NewDefaultConfiguration() *Configuration {
	return &Configuration{
		Enabled: true,
		Steps: []*RefinementStep{
			NewRefinementStep(
				"Cohesion Check",
				"Check that the text reads as one coherent whole. Fix abrupt transitions, contradictions between sentences, and references to things which were never introduced.",
				true,
			),
			NewRefinementStep(
				"Improve Detail",
				"Where the text is vague, add concrete detail consistent with what is already said. Never invent facts which contradict the text.",
				true,
			),
		},
	}
}

// Clone deep-copies the configuration so that a refinement run can snapshot it: edits made
// while a run is in flight only apply to the next run.
func (c *Configuration) Clone() *Configuration {
	steps := make([]*RefinementStep, 0, len(c.Steps))
	for _, step := range c.Steps {
		steps = append(steps, step.Clone())
	}
	return &Configuration{
		Enabled: c.Enabled,
		Steps:   steps,
	}
}

// EnabledSteps returns the ordered subsequence of steps which take part in a refinement run.
func (c *Configuration) EnabledSteps() []*RefinementStep {
	var result []*RefinementStep
	for _, step := range c.Steps {
		if step.Enabled {
			result = append(result, step)
		}
	}
	return result
}

package domain

import (
	"fmt"
	"strings"
	"sync"

	"github.com/sergi/go-diff/diffmatchpatch"

	"kgeyst.com/refinery/pkg/common"
)

// RefinementService runs the refinement pipeline: it walks the enabled steps in store order
// and lets each of them rewrite the working text via the text generator. Step N's prompt is
// built from step N-1's output, so steps are never executed concurrently.
type RefinementService struct {
	mutex         sync.Mutex
	textGenerator TextGenerator
	notifier      Notifier
	logger        common.Logger
}

func NewRefinementService(
	textGenerator TextGenerator,
	notifier Notifier,
	logger common.Logger,
) *RefinementService {
	return &RefinementService{
		textGenerator: textGenerator,
		notifier:      notifier,
		logger:        logger,
	}
}

// Refine passes `text` through every enabled step of `config` and returns the final working
// text. It never fails: a single step's error is reported via the notifier and the run
// continues with the unchanged working text. With a disabled configuration, or with no
// enabled steps, the input is returned as is and the generator is never invoked.
func (r *RefinementService) Refine(text string, config *Configuration) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	if config == nil || !config.Enabled {
		return text
	}
	enabledSteps := config.EnabledSteps()
	if len(enabledSteps) == 0 {
		return text
	}
	current := text
	for _, step := range enabledSteps {
		if strings.TrimSpace(step.Instructions) == "" {
			continue
		}
		prompt := buildRefinementPrompt(current, step.Instructions)
		response, err := r.textGenerator.Complete(prompt)
		if err != nil {
			r.logger.Log(fmt.Sprintf("refinement step \"%s\" failed: %s\n", step.Label, err.Error()))
			r.notifier.Notify(fmt.Sprintf("refinement step \"%s\" failed, moving on", step.Label))
			continue
		}
		response = strings.TrimSpace(response)
		if response == "" { // the model judged no refinement is needed
			continue
		}
		r.logChangedCharacterCount(step, current, response)
		current = response
	}
	return current
}

func (r *RefinementService) logChangedCharacterCount(step *RefinementStep, before, after string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	r.logger.Log(fmt.Sprintf("refinement step \"%s\" changed %d character(s)\n", step.Label, dmp.DiffLevenshtein(diffs)))
}

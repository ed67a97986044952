package domain

// TextGenerator a generic interface for a single-shot text completion as implemented by
// a large language model (LLM). The pipeline never retries: a failed completion is reported
// and the run moves on to the next step.
type TextGenerator interface {
	// Name the name of the underlying model. Useful for debugging.
	Name() string
	// Complete completes the given prompt by using the underlying LLM.
	Complete(prompt string) (string, error)
}

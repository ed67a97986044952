package logging

import (
	"fmt"
	"time"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

type textGeneratorDecorator struct {
	wrappedTextGenerator domain.TextGenerator
	logger               common.Logger
}

func NewTextGeneratorDecorator(wrappedTextGenerator domain.TextGenerator, logger common.Logger) domain.TextGenerator {
	return &textGeneratorDecorator{
		wrappedTextGenerator: wrappedTextGenerator,
		logger:               logger,
	}
}

func (t *textGeneratorDecorator) Name() string {
	return t.wrappedTextGenerator.Name()
}

func (t *textGeneratorDecorator) Complete(prompt string) (string, error) {
	t.logger.Log(fmt.Sprintf("\n================\n raw prompt (using '%s'):\n%s\n================\n\n", t.Name(), prompt))
	startTime := time.Now()
	response, err := t.wrappedTextGenerator.Complete(prompt)
	if err != nil {
		return "", err
	}
	t.logger.Log(fmt.Sprintf("\n================\n raw prompt response:\n%s\n (took %d ms)\n================\n", response, time.Since(startTime).Milliseconds()))
	return response, nil
}

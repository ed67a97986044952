package llamacpp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

var errUnexpectedModelOutput = errors.New("unexpected model output")

const (
	// ConfigKeyLLMModelPath the path to the target model relative to the working directory
	ConfigKeyLLMModelPath = "llmModelPath"
	// ConfigKeyLLMTemperature how creative the output is
	ConfigKeyLLMTemperature = "llmTemperature"
	// ConfigKeyLLMContextSize the size of the context
	ConfigKeyLLMContextSize = "llmContextSize"
	// ConfigKeyLLMCPUThreadCount the number of CPUs used during inference
	ConfigKeyLLMCPUThreadCount = "llmCPUThreadCount"
	// ConfigKeyLLMGPULayerCount how many layers in the model can be offloaded to GPU
	ConfigKeyLLMGPULayerCount = "llmGPULayerCount"
	// ConfigKeyLLMRepeatPenalty a coefficient against repetitions of same tokens
	ConfigKeyLLMRepeatPenalty = "llmRepeatPenalty"
	// ConfigKeyLLMResponseTimeout when to stop if the model takes too long to process input/generate output
	ConfigKeyLLMResponseTimeout = "llmResponseTimeout"
)

type textGenerator struct {
	mutex           sync.Mutex
	logger          common.Logger
	modelPath       string
	inferCommand    string
	temperature     float64
	contextSize     int
	gpuLayerCount   int
	cpuThreadCount  int
	repeatPenalty   float64
	responseTimeout time.Duration
}

// NewTextGenerator creates a text generator as implemented by llama.cpp. Each completion runs
// the llama.cpp binary as a separate subprocess: crashes in llama.cpp never take the host
// process down, and nothing of the prompt outlives the run.
func NewTextGenerator(config *common.Config, logger common.Logger) domain.TextGenerator {
	return &textGenerator{
		logger:          logger,
		modelPath:       config.GetStringOrDefault(ConfigKeyLLMModelPath, "model.bin"),
		temperature:     config.GetFloatOrDefault(ConfigKeyLLMTemperature, 0.7),
		contextSize:     config.GetIntOrDefault(ConfigKeyLLMContextSize, 4096),
		gpuLayerCount:   config.GetIntOrDefault(ConfigKeyLLMGPULayerCount, 40),
		cpuThreadCount:  config.GetIntOrDefault(ConfigKeyLLMCPUThreadCount, 6),
		repeatPenalty:   config.GetFloatOrDefault(ConfigKeyLLMRepeatPenalty, 1.1),
		responseTimeout: config.GetDurationOrDefault(ConfigKeyLLMResponseTimeout, time.Minute),
	}
}

func (t *textGenerator) Name() string {
	return t.modelPath
}

func (t *textGenerator) Complete(prompt string) (string, error) {
	// Only 1 completion can be processed at a time because we run on commodity hardware which
	// usually can't process two requests simultaneously due to low amounts of VRAM.
	t.mutex.Lock()
	defer t.mutex.Unlock()
	command, err := t.buildInferCommand()
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	err = runInferCommand(command, prompt, t.responseTimeout, func(s string) {
		buf.WriteString(s)
	})
	if err != nil {
		// A process can run successfully but be terminated with a SIGKILL due to context
		// cancellation, so we log it and keep what has been generated so far.
		_, ok := err.(*exec.ExitError)
		if !ok {
			t.logger.Log(err.Error() + "\n")
		}
	}
	output := buf.String()
	// The model repeats the prompt before its own output, so we remove it from the response.
	if len(output) < len(prompt)+1 {
		return "", errUnexpectedModelOutput
	}
	return strings.TrimSpace(output[len(prompt)+1:]), nil
}

func (t *textGenerator) buildInferCommand() (string, error) {
	if t.inferCommand != "" {
		return t.inferCommand, nil
	}
	shellTemplate := "%s/llama.cpp -m %s/"
	shellTemplate += fmt.Sprintf(
		"%s -t %d -ngl %d --color -c %d --temp %f --repeat_penalty %f -n -1 -p ",
		t.modelPath,
		t.cpuThreadCount,
		t.gpuLayerCount,
		t.contextSize,
		t.temperature,
		t.repeatPenalty,
	)
	workingDirectory, err := os.Getwd()
	if err != nil {
		return "", err
	}
	t.inferCommand = fmt.Sprintf(shellTemplate, workingDirectory, workingDirectory)
	return t.inferCommand, nil
}

// We hook up to the llama.cpp binary by launching a subprocess and reading its standard output
// until the process exits or the response timeout fires.
func runInferCommand(cmdstr, prompt string, responseTimeout time.Duration, processLineFunc func(s string)) error {
	args := strings.Fields(cmdstr)
	args = append(args, prompt)
	ctx, cancelFunc := context.WithDeadline(context.Background(), time.Now().Add(responseTimeout))
	defer cancelFunc()
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	var wg sync.WaitGroup
	wg.Add(1)
	scanner := bufio.NewScanner(stdout)
	go func() {
		for scanner.Scan() {
			processLineFunc(scanner.Text() + "\n")
		}
		wg.Done()
	}()
	if err = cmd.Start(); err != nil {
		return err
	}
	wg.Wait()
	return cmd.Wait()
}

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/api"
)

func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

func mainImpl() error {
	config, err := common.LoadConfig("config.yaml")
	if err != nil {
		return err
	}
	refinery, err := api.NewAPI(config, nil)
	if err != nil {
		return err
	}
	defer refinery.Stop()
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			err := runSettingsCommand(refinery, line[1:])
			if err != nil {
				fmt.Println(err)
			}
		} else {
			fmt.Println(refinery.Refine(line))
		}
	}
	return nil
}

// Settings commands take the place of the settings panel a GUI host would render:
//
//	:steps                          lists the configured steps
//	:add <label> | <instructions>   appends a new step
//	:edit N <instructions>          replaces the instructions of step N
//	:remove N                       removes step N
//	:move N                         moves step N to the end
//	:enable N / :disable N          toggles step N
//	:on / :off                      flips the master switch
func runSettingsCommand(refinery api.API, command string) error {
	verb, rest, _ := strings.Cut(command, " ")
	rest = strings.TrimSpace(rest)
	switch verb {
	case "steps":
		printSteps(refinery)
		return nil
	case "add":
		label, instructions, found := strings.Cut(rest, "|")
		if !found {
			return fmt.Errorf("usage: :add <label> | <instructions>")
		}
		step := refinery.AppendStep(strings.TrimSpace(label), strings.TrimSpace(instructions), true)
		fmt.Printf("added step \"%s\"\n", step.Label)
		return nil
	case "edit":
		indexStr, instructions, found := strings.Cut(rest, " ")
		if !found {
			return fmt.Errorf("usage: :edit N <instructions>")
		}
		index, err := strconv.Atoi(indexStr)
		if err != nil {
			return err
		}
		steps := refinery.Steps()
		if index < 0 || index >= len(steps) {
			return fmt.Errorf("no step at position %d", index)
		}
		step := steps[index]
		return refinery.UpdateStepAt(index, step.Label, step.Enabled, strings.TrimSpace(instructions))
	case "remove":
		index, err := strconv.Atoi(rest)
		if err != nil {
			return err
		}
		return refinery.RemoveStepAt(index)
	case "move":
		index, err := strconv.Atoi(rest)
		if err != nil {
			return err
		}
		return refinery.MoveStepToEnd(index)
	case "enable", "disable":
		index, err := strconv.Atoi(rest)
		if err != nil {
			return err
		}
		steps := refinery.Steps()
		if index < 0 || index >= len(steps) {
			return fmt.Errorf("no step at position %d", index)
		}
		step := steps[index]
		return refinery.UpdateStepAt(index, step.Label, verb == "enable", step.Instructions)
	case "on":
		refinery.SetEnabled(true)
		return nil
	case "off":
		refinery.SetEnabled(false)
		return nil
	default:
		return fmt.Errorf("unknown command \"%s\"", verb)
	}
}

func printSteps(refinery api.API) {
	state := "off"
	if refinery.IsEnabled() {
		state = "on"
	}
	fmt.Printf("refinement is %s\n", state)
	for index, step := range refinery.Steps() {
		marker := " "
		if step.Enabled {
			marker = "x"
		}
		fmt.Printf("%d. [%s] %s: %s\n", index, marker, step.Label, step.Instructions)
	}
}

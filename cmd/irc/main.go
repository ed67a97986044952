package main

import (
	"fmt"
	"strings"

	"github.com/whyrusleeping/hellabot"

	"kgeyst.com/refinery/pkg/common"
	"kgeyst.com/refinery/pkg/refinery/api"
	"kgeyst.com/refinery/pkg/refinery/domain"
)

func main() {
	err := mainImpl()
	if err != nil {
		panic(err)
	}
}

type ircNotifier struct {
	bot      *hbot.Bot
	roomName string
}

func (i *ircNotifier) Notify(message string) {
	i.bot.Msg("#"+i.roomName, message)
}

func mainImpl() error {
	config, err := common.LoadConfig("config.yaml")
	if err != nil {
		return err
	}
	botName := config.GetStringOrDefault("botName", "Refinery")
	roomName := config.GetStringOrDefault("roomName", "JohnRoom")
	serverName := config.GetStringOrDefault("serverName", "irc.euirc.net:6667")
	ircBot, err := hbot.NewBot(serverName, botName)
	if err != nil {
		return err
	}
	notifier := &ircNotifier{bot: ircBot, roomName: roomName}
	refinery, err := api.NewAPI(config, notifier)
	if err != nil {
		return err
	}
	defer refinery.Stop()
	var trigger = hbot.Trigger{
		Condition: func(b *hbot.Bot, m *hbot.Message) bool {
			return true
		},
		Action: func(b *hbot.Bot, m *hbot.Message) bool {
			if m.Command != "PRIVMSG" {
				return true
			}
			if !strings.HasPrefix(strings.ToLower(m.Content), strings.ToLower(botName)) {
				return true
			}
			what := strings.TrimSpace(m.Content[len(botName):])
			if len(what) == 0 || what[0] == '@' || len(m.To) == 0 || m.To[0] != '#' {
				return false
			}
			if what[0] == ',' {
				what = strings.TrimSpace(what[1:])
			}
			if runSettingsCommand(refinery, b, m, what) {
				return false
			}
			response := refinery.Refine(what)
			if response != "" {
				b.Reply(m, m.From+" "+response)
			}
			return true
		},
	}
	ircBot.AddTrigger(trigger)
	ircBot.Channels = []string{"#" + roomName}
	ircBot.Run()
	return nil
}

// Chat commands addressed to the bot take the place of the settings panel a GUI host would
// render: "steps" lists the configured steps, "on"/"off" flip the master switch, and
// "add <label> | <instructions>" appends a new step.
func runSettingsCommand(refinery api.API, b *hbot.Bot, m *hbot.Message, what string) bool {
	switch {
	case what == "steps":
		b.Reply(m, m.From+" "+formatSteps(refinery))
		return true
	case what == "on":
		refinery.SetEnabled(true)
		return true
	case what == "off":
		refinery.SetEnabled(false)
		return true
	case strings.HasPrefix(what, "add "):
		label, instructions, found := strings.Cut(what[len("add "):], "|")
		if !found {
			b.Reply(m, m.From+" usage: add <label> | <instructions>")
			return true
		}
		step := refinery.AppendStep(strings.TrimSpace(label), strings.TrimSpace(instructions), true)
		b.Reply(m, m.From+" added step \""+step.Label+"\"")
		return true
	}
	return false
}

func formatSteps(refinery api.API) string {
	state := "off"
	if refinery.IsEnabled() {
		state = "on"
	}
	var parts []string
	for index, step := range refinery.Steps() {
		parts = append(parts, fmt.Sprintf("%d. %s (%s)", index, step.Label, enabledString(step)))
	}
	if len(parts) == 0 {
		return "refinement is " + state + ", no steps configured"
	}
	return "refinement is " + state + ": " + strings.Join(parts, ", ")
}

func enabledString(step *domain.RefinementStep) string {
	if step.Enabled {
		return "enabled"
	}
	return "disabled"
}

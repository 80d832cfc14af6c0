package abtest

import "fmt"

// Command is an operator command.
type Command int

// The commands an operator can issue.
const (
	CommandRunPause Command = iota
	CommandSingleStep
	CommandSpeedUp
	CommandSlowDown
	CommandSwap
	CommandQuit
)

var commandNames = []string{
	CommandRunPause:   "run-pause",
	CommandSingleStep: "single-step",
	CommandSpeedUp:    "speed-up",
	CommandSlowDown:   "slow-down",
	CommandSwap:       "swap",
	CommandQuit:       "quit",
}

// Commands lists every command.
func Commands() []Command {
	return []Command{
		CommandRunPause,
		CommandSingleStep,
		CommandSpeedUp,
		CommandSlowDown,
		CommandSwap,
		CommandQuit,
	}
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return fmt.Sprintf("Command(%d)", int(c))
	}

	return commandNames[c]
}

// ParseCommand converts the name of a command into a Command.
func ParseCommand(s string) (Command, error) {
	for i, name := range commandNames {
		if name == s {
			return Command(i), nil
		}
	}

	return 0, fmt.Errorf("abtest: unknown command %q", s)
}

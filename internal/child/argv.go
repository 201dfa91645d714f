// Package child runs the embedded program and relays termination signals to it.
package child

import "errors"

// Placeholder is replaced by the window identifier in the command arguments.
const Placeholder = "WID"

var ErrEmptyCommand = errors.New("no command given")

// BuildArgv returns a copy of args with every argument that is exactly
// Placeholder replaced by wid.
func BuildArgv(args []string, wid string) ([]string, error) {
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}

	argv := make([]string, len(args))
	for i, arg := range args {
		if arg == Placeholder {
			argv[i] = wid
		} else {
			argv[i] = arg
		}
	}

	return argv, nil
}

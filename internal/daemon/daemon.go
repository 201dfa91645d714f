// Package daemon detaches the program from its terminal by re-executing it in
// a new session.
package daemon

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// EnvMarker is set in the environment of the detached process.
const EnvMarker = "XWINWRAP_DAEMON"

// IsDaemon reports whether this process was started by Start.
func IsDaemon() bool {
	return os.Getenv(EnvMarker) == "1"
}

// Start runs exe with args in a new session with its standard streams on
// /dev/null and returns its pid without waiting for it.
func Start(exe string, args []string) (int, error) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return 0, err
	}
	defer devNull.Close()

	cmd := exec.Command(exe, args...)
	cmd.Env = append(os.Environ(), EnvMarker+"=1")
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("couldn't daemonize: %w", err)
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		return pid, err
	}

	return pid, nil
}

// Self re-executes the running binary with args through Start.
func Self(args []string) (int, error) {
	exe, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("couldn't daemonize: %w", err)
	}
	return Start(exe, args)
}

// Detach finishes daemonizing inside the detached process. It runs after the
// command line has been resolved, so relative paths given by the user still
// work. The marker is removed so programs started later can daemonize again.
func Detach() error {
	if err := os.Unsetenv(EnvMarker); err != nil {
		return err
	}
	unix.Umask(0)
	return os.Chdir("/")
}

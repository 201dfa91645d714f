// Package app wires the window, its shape and the embedded program together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/ItsNotGoodName/x-winwrap/internal/child"
	"github.com/ItsNotGoodName/x-winwrap/internal/closer"
	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/ItsNotGoodName/x-winwrap/internal/xwm"
)

// Environment passed to the embedded program.
const (
	EnvWID     = "XWINWRAP_WID"
	EnvSession = "XWINWRAP_SESSION"
)

type Options struct {
	// Session identifies this run in logs and in the program's environment.
	Session string
	// Argv is published as WM_COMMAND, os.Args when nil.
	Argv []string
	// Supervisor runs the program, child.NewSupervisor() when nil.
	Supervisor *child.Supervisor
	// Closer receives the teardown of everything Run creates. Run tears down
	// on its own when nil.
	Closer *closer.Stack
}

// Run creates and maps the window described by w, runs command in it and
// waits for the command to exit. Only failures before the command starts are
// returned as errors, the command's own exit is reported through child.Exit.
func Run(ctx context.Context, x xwm.X, w config.Window, command []string, opts Options) (child.Exit, error) {
	log := slog.With("session", opts.Session)

	if len(command) == 0 {
		return child.Exit{}, child.ErrEmptyCommand
	}

	stack := opts.Closer
	if stack == nil {
		stack = &closer.Stack{}
		defer stack.CloseAll()
	}

	argv := opts.Argv
	if argv == nil {
		argv = os.Args
	}

	visual := xwm.SelectVisual(x, w.ARGB)

	desktop, err := xwm.FindDesktop(x)
	if err != nil {
		return child.Exit{}, err
	}

	target, err := xwm.CreateWindow(x, w, desktop, visual, argv)
	if err != nil {
		return child.Exit{}, err
	}
	stack.Add("window "+target.ID(), func() error { return target.Destroy(x) })

	if err := xwm.ApplyShape(x, target, w.Shape, w.NoInput); err != nil {
		log.Warn("Failed to shape window", "wid", target.ID(), "error", err)
	}

	if err := target.Map(x); err != nil {
		return child.Exit{}, fmt.Errorf("couldn't map window: %w", err)
	}

	log.Info("Window ready", "wid", target.ID(), "geometry", fmt.Sprintf("%dx%d%+d%+d", target.Width, target.Height, target.X, target.Y))

	programArgv, err := child.BuildArgv(command, target.ID())
	if err != nil {
		return child.Exit{}, err
	}

	supervisor := child.NewSupervisor()
	if opts.Supervisor != nil {
		s := *opts.Supervisor
		supervisor = &s
	}
	supervisor.Env = append(slices.Clone(supervisor.Env),
		EnvWID+"="+target.ID(),
		EnvSession+"="+opts.Session,
	)

	exit := supervisor.Run(ctx, programArgv)
	log.Debug("Program exited", "pid", exit.Pid, "code", exit.Code, "signal", exit.Signal)

	return exit, nil
}

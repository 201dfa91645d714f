package child

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

// ExecFailedStatus is the exit status reported when the program could not be
// started at all.
const ExecFailedStatus = 2

// Exit describes how the program ended.
type Exit struct {
	Name string
	Pid  int
	// Code is -1 when the program was killed by a signal.
	Code       int
	Signal     syscall.Signal
	ExecFailed bool
}

func (e Exit) Signaled() bool {
	return e.Signal != 0
}

func (e Exit) String() string {
	if e.Signaled() {
		return fmt.Sprintf("%s killed by signal %d (%s)", e.Name, int(e.Signal), e.Signal)
	}
	return fmt.Sprintf("%s died, exit status %d", e.Name, e.Code)
}

// Supervisor starts a program and waits for it, forwarding SIGTERM and SIGINT
// received by this process. The zero value runs the program with its standard
// streams on the null device.
type Supervisor struct {
	// Env is appended to the environment inherited by the program.
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	notify func(c chan<- os.Signal, sig ...os.Signal)
	stop   func(c chan<- os.Signal)
}

func NewSupervisor(env ...string) *Supervisor {
	return &Supervisor{
		Env:    env,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		notify: signal.Notify,
		stop:   signal.Stop,
	}
}

// Run starts argv and blocks until it has been reaped. Cancelling ctx sends
// SIGTERM to the program, which still has to exit on its own.
func (s *Supervisor) Run(ctx context.Context, argv []string) Exit {
	log := slog.With("func", "child.Supervisor.Run")

	if len(argv) == 0 {
		log.Error("Failed to start program", "error", ErrEmptyCommand)
		return Exit{Code: ExecFailedStatus, ExecFailed: true}
	}
	name := argv[0]

	notify, stop := s.notify, s.stop
	if notify == nil {
		notify = signal.Notify
	}
	if stop == nil {
		stop = signal.Stop
	}
	// Subscribe before the program exists so no signal is lost in between.
	sigC := make(chan os.Signal, 1)
	notify(sigC, syscall.SIGTERM, syscall.SIGINT)
	defer stop(sigC)

	cmd := exec.Command(name, argv[1:]...)
	cmd.Env = append(os.Environ(), s.Env...)
	cmd.Stdin = s.Stdin
	cmd.Stdout = s.Stdout
	cmd.Stderr = s.Stderr

	if err := cmd.Start(); err != nil {
		log.Error("Failed to start program", "program", name, "error", err)
		return Exit{Name: name, Code: ExecFailedStatus, ExecFailed: true}
	}

	pid := cmd.Process.Pid
	log.Debug("Program started", "program", name, "pid", pid)

	waitC := make(chan error, 1)
	go func() { waitC <- cmd.Wait() }()

	done := ctx.Done()
	for {
		select {
		case sig := <-sigC:
			log.Debug("Forwarding signal", "signal", sig, "pid", pid)
			if err := cmd.Process.Signal(sig); err != nil {
				log.Debug("Failed to forward signal", "signal", sig, "error", err)
			}
		case <-done:
			done = nil
			log.Debug("Terminating program", "pid", pid)
			if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
				log.Debug("Failed to terminate program", "error", err)
			}
		case err := <-waitC:
			return exitOf(name, pid, cmd.ProcessState, err)
		}
	}
}

func exitOf(name string, pid int, state *os.ProcessState, err error) Exit {
	exit := Exit{Name: name, Pid: pid}

	if state == nil {
		slog.Error("Failed to wait for program", "program", name, "error", err)
		exit.Code = ExecFailedStatus
		exit.ExecFailed = true
		return exit
	}

	if status, ok := state.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		exit.Code = -1
		exit.Signal = status.Signal()
		return exit
	}

	exit.Code = state.ExitCode()
	return exit
}

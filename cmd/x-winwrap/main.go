package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ItsNotGoodName/x-winwrap/internal/app"
	"github.com/ItsNotGoodName/x-winwrap/internal/build"
	"github.com/ItsNotGoodName/x-winwrap/internal/child"
	"github.com/ItsNotGoodName/x-winwrap/internal/closer"
	"github.com/ItsNotGoodName/x-winwrap/internal/config"
	"github.com/ItsNotGoodName/x-winwrap/internal/daemon"
	"github.com/ItsNotGoodName/x-winwrap/internal/xwm"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	"github.com/phsym/console-slog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// legacyFlags maps the single dash flags of xwinwrap to their long names.
var legacyFlags = map[string]string{
	"-ni":    "--no-input",
	"-argb":  "--argb",
	"-fs":    "--fullscreen",
	"-un":    "--undecorated",
	"-st":    "--skip-taskbar",
	"-sp":    "--skip-pager",
	"-nf":    "--no-focus",
	"-sh":    "--shape",
	"-ov":    "--override",
	"-debug": "--debug",
}

func main() {
	godotenv.Load()

	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newCommand()
	cmd.SetArgs(normalizeArgs(args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", build.Name, err)
		if errors.Is(err, config.ErrUsage) || errors.Is(err, child.ErrEmptyCommand) {
			fmt.Fprintln(stderr, cmd.UseLine())
		}
		return 1
	}

	return 0
}

// normalizeArgs rewrites legacy flags before the command separator so they do
// not parse as grouped shorthands.
func normalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if long, ok := legacyFlags[arg]; ok {
			arg = long
		}
		out = append(out, arg)
	}
	return out
}

func newCommand() *cobra.Command {
	var configPath string
	flags := config.DefaultOptions()

	cmd := &cobra.Command{
		Use:   build.Name + " [flags] -- COMMAND [ARGS...]",
		Short: "Run a program inside a window anchored to the desktop",
		Long: `x-winwrap creates a window on the desktop and runs COMMAND in it. Every
argument of COMMAND that is exactly WID is replaced by the window id, which
is also exported as ` + app.EnvWID + `.

Legacy xwinwrap flags (-ni, -argb, -fs, -un, -st, -sp, -nf, -sh, -ov, -debug)
are accepted.`,
		Example:       `  x-winwrap -g 1920x1080+0+0 -ni -s -st -sp -b -nf -ov -- mpv -wid WID --loop video.mp4`,
		Version:       build.Current.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := commandArgs(cmd, args)
			if err != nil {
				return err
			}

			fileOptions, configFile, err := config.Load(configPath)
			if err != nil {
				return err
			}
			options := mergeFlags(cmd.Flags(), fileOptions, flags)

			if options.Debug {
				InitLogger(slog.LevelDebug)
			} else {
				InitLogger(slog.LevelInfo)
			}

			w, err := options.Window()
			if err != nil {
				return err
			}

			if configFile != "" {
				slog.Debug("Loaded config", "file", configFile)
			}
			if options.Debug {
				pp.ColoringEnabled = false
				slog.Debug("Window " + pp.Sprint(w))
			}

			if options.Daemonize && !daemon.IsDaemon() {
				pid, err := daemon.Self(os.Args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "pid of child process %d\n", pid)
				return nil
			}
			if daemon.IsDaemon() {
				if err := daemon.Detach(); err != nil {
					return err
				}
			}

			exit, err := serve(context.Background(), options.Display, w, command)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.ErrOrStderr(), exit.String())
			return nil
		},
	}

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVar(&configPath, "config", "", "config file (default $"+config.EnvConfig+" or $XDG_CONFIG_HOME/"+build.Name+"/config.yaml)")
	f.StringVar(&flags.Display, "display", flags.Display, "X display to connect to (default $DISPLAY)")
	f.StringVarP(&flags.Geometry, "geometry", "g", flags.Geometry, "window geometry as WxH+X+Y")
	f.BoolVar(&flags.NoInput, "no-input", flags.NoInput, "ignore input (-ni)")
	f.BoolVar(&flags.ARGB, "argb", flags.ARGB, "use an ARGB visual (-argb)")
	f.BoolVar(&flags.Fullscreen, "fullscreen", flags.Fullscreen, "cover the whole display (-fs)")
	f.BoolVar(&flags.Undecorated, "undecorated", flags.Undecorated, "ask the window manager for no decorations (-un)")
	f.BoolVarP(&flags.Sticky, "sticky", "s", flags.Sticky, "show on every desktop")
	f.BoolVar(&flags.SkipTaskbar, "skip-taskbar", flags.SkipTaskbar, "keep out of the taskbar (-st)")
	f.BoolVar(&flags.SkipPager, "skip-pager", flags.SkipPager, "keep out of the pager (-sp)")
	f.BoolVarP(&flags.Above, "above", "a", flags.Above, "keep above other windows")
	f.BoolVarP(&flags.Below, "below", "b", flags.Below, "keep below other windows")
	f.BoolVar(&flags.NoFocus, "no-focus", flags.NoFocus, "never take input focus (-nf)")
	f.Float64VarP(&flags.Opacity, "opacity", "o", flags.Opacity, "opacity between 0 and 1")
	f.StringVar(&flags.Shape, "shape", flags.Shape, "window shape: rectangle, circle or triangle (-sh)")
	f.BoolVar(&flags.Override, "override", flags.Override, "bypass the window manager (-ov)")
	f.BoolVarP(&flags.Daemonize, "daemonize", "d", flags.Daemonize, "detach from the terminal")
	f.BoolVar(&flags.Debug, "debug", flags.Debug, "enable debug logging (-debug)")

	return cmd
}

// commandArgs returns the arguments after "--".
func commandArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: command must follow --, got %q", config.ErrUsage, strings.Join(args, " "))
		}
		return nil, child.ErrEmptyCommand
	}
	if dash > 0 {
		return nil, fmt.Errorf("%w: unexpected argument %q before --", config.ErrUsage, args[0])
	}
	if len(args) == 0 {
		return nil, child.ErrEmptyCommand
	}
	return args, nil
}

// mergeFlags overlays the flags set on the command line onto file.
func mergeFlags(fs *pflag.FlagSet, file, flags config.Options) config.Options {
	o := file
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}

	set("display", func() { o.Display = flags.Display })
	set("geometry", func() { o.Geometry = flags.Geometry })
	set("no-input", func() { o.NoInput = flags.NoInput })
	set("argb", func() { o.ARGB = flags.ARGB })
	set("fullscreen", func() { o.Fullscreen = flags.Fullscreen })
	set("undecorated", func() { o.Undecorated = flags.Undecorated })
	set("sticky", func() { o.Sticky = flags.Sticky })
	set("skip-taskbar", func() { o.SkipTaskbar = flags.SkipTaskbar })
	set("skip-pager", func() { o.SkipPager = flags.SkipPager })
	set("above", func() { o.Above = flags.Above })
	set("below", func() { o.Below = flags.Below })
	set("no-focus", func() { o.NoFocus = flags.NoFocus })
	set("opacity", func() { o.Opacity = flags.Opacity })
	set("shape", func() { o.Shape = flags.Shape })
	set("override", func() { o.Override = flags.Override })
	set("daemonize", func() { o.Daemonize = flags.Daemonize })
	set("debug", func() { o.Debug = flags.Debug })

	return o
}

func serve(ctx context.Context, display string, w config.Window, command []string) (child.Exit, error) {
	session := uuid.NewString()
	log := slog.With("session", session)

	x, err := xwm.Open(display)
	if err != nil {
		return child.Exit{}, err
	}

	var stack closer.Stack
	defer stack.CloseAll()
	stack.Add("session", x.Close)

	log.Debug("Connected to X server", "display", display, "screen", x.Screen())

	return app.Run(ctx, x, w, command, app.Options{
		Session: session,
		Closer:  &stack,
	})
}

func InitLogger(level slog.Level) {
	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: level,
	})))
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/pflag"

	"github.com/offlinefirst/actioncap/internal/buildinfo"
	"github.com/offlinefirst/actioncap/pkg/config"
	"github.com/offlinefirst/actioncap/pkg/logging"
)

type command struct {
	name        string
	description string
	configure   func(fs *pflag.FlagSet)
	run         func(fs *pflag.FlagSet, args []string, ctx *AppContext, stdout io.Writer, stderr io.Writer) error
	skipInit    bool
}

// AppContext carries the loaded configuration and logger into subcommands.
type AppContext struct {
	Config config.Config
	Logger *slog.Logger
}

// RootCommand dispatches actioncap subcommands.
type RootCommand struct {
	commands []command
	stdout   io.Writer
	stderr   io.Writer
	appCtx   *AppContext

	configPath string
	logLevel   string
	logFormat  string
}

// NewRootCommand constructs the dispatcher with record, doctor and version.
func NewRootCommand() *RootCommand {
	return &RootCommand{
		commands: []command{newRecordCommand(), newDoctorCommand(), newVersionCommand()},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

func (rc *RootCommand) lookup(name string) (command, bool) {
	for _, c := range rc.commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func (rc *RootCommand) globalFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("actioncap", pflag.ContinueOnError)
	fs.SetOutput(rc.stderr)
	fs.SetInterspersed(false)
	fs.StringVar(&rc.configPath, "config", "", "Path to config file (default: ./"+config.DefaultFileName+" if present)")
	fs.StringVar(&rc.logLevel, "log-level", "", "Override log level (debug, info, warn, error)")
	fs.StringVar(&rc.logFormat, "log-format", "", "Override log output format (json, console, auto)")
	return fs
}

// Execute parses global flags up to the subcommand name, then the
// subcommand's own flags, and runs it.
func (rc *RootCommand) Execute(args []string) error {
	global := rc.globalFlags()
	global.Usage = func() { rc.printHelp(global) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if global.NArg() == 0 {
		rc.printHelp(global)
		return nil
	}
	name := global.Arg(0)
	sub, ok := rc.lookup(name)
	if !ok {
		fmt.Fprintf(rc.stderr, "Unknown command %q\n\n", name)
		rc.printHelp(global)
		return fmt.Errorf("unknown command %q", name)
	}

	fs := pflag.NewFlagSet(sub.name, pflag.ContinueOnError)
	fs.SetOutput(rc.stderr)
	if sub.configure != nil {
		sub.configure(fs)
	}
	fs.Usage = func() {
		fmt.Fprintf(rc.stdout, "Usage: actioncap %s [flags]\n%s\n\n%s", sub.name, sub.description, fs.FlagUsages())
	}
	if err := fs.Parse(global.Args()[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	var app *AppContext
	if !sub.skipInit {
		var err error
		if app, err = rc.ensureAppContext(); err != nil {
			return err
		}
	}
	return sub.run(fs, fs.Args(), app, rc.stdout, rc.stderr)
}

func (rc *RootCommand) ensureAppContext() (*AppContext, error) {
	if rc.appCtx != nil {
		return rc.appCtx, nil
	}

	cfg, err := config.Load(rc.configPath)
	if err != nil {
		return nil, err
	}
	if rc.logLevel != "" {
		if cfg.Logging.Level, err = config.NormalizeLogLevel(rc.logLevel); err != nil {
			return nil, err
		}
	}
	if rc.logFormat != "" {
		if cfg.Logging.Format, err = config.NormalizeFormat(rc.logFormat); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: rc.stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "source", cfg.Source, "capture_source", cfg.Capture.Source, "output", cfg.Output.Path)

	rc.appCtx = &AppContext{Config: cfg, Logger: logger}
	return rc.appCtx, nil
}

func (rc *RootCommand) printHelp(global *pflag.FlagSet) {
	fmt.Fprintf(rc.stdout, "actioncap - keyboard and pointer action recorder\nVersion: %s\n\n", versionString())
	fmt.Fprintln(rc.stdout, "Usage: actioncap [global flags] <command> [command flags]")
	fmt.Fprintf(rc.stdout, "\nGlobal flags:\n%s\nCommands:\n", global.FlagUsages())
	for _, c := range rc.commands {
		fmt.Fprintf(rc.stdout, "  %-8s %s\n", c.name, c.description)
	}
}

func versionString() string {
	return fmt.Sprintf("%s (%s/%s)", buildinfo.Version(), runtimeVersion(), runtimeGOOS())
}

// Swapped in tests.
var (
	runtimeVersion = runtime.Version
	runtimeGOOS    = func() string { return runtime.GOOS }
)

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/broady/taskmaster/client"
	"github.com/broady/taskmaster/internal/config"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Config file (default $XDG_CONFIG_HOME/taskmaster/config.toml)." type:"path" short:"c"`
	URL    string `help:"TaskMaster server URL for client commands." name:"url" short:"u"`
}

type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" help:"Run the TaskMaster API server."`
	TUI     TUICmd     `cmd:"" name:"tui" help:"Open the interactive terminal UI."`
	List    ListCmd    `cmd:"" aliases:"ls" help:"List tasks."`
	Add     AddCmd     `cmd:"" help:"Create a task."`
	Edit    EditCmd    `cmd:"" help:"Change a task's title, priority or due date."`
	Done    DoneCmd    `cmd:"" help:"Mark a task completed."`
	Undone  UndoneCmd  `cmd:"" help:"Mark a task not completed."`
	Rm      RmCmd      `cmd:"" aliases:"delete" help:"Delete a task."`
	Version VersionCmd `cmd:"" help:"Print version information."`
}

// runtime is bound into every command's Run method.
type runtime struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

// loadConfig reads the config and applies the global flags on top.
func (rt *runtime) loadConfig(g *Globals) (*config.Config, error) {
	cfg, err := config.Load(g.Config, rt.getenv)
	if err != nil {
		return nil, usageError{err}
	}
	if g.URL != "" {
		cfg.Client.URL = g.URL
	}
	return cfg, nil
}

// client builds an API client from the config and global flags.
func (rt *runtime) client(g *Globals, opts ...client.Option) (*client.Client, error) {
	cfg, err := rt.loadConfig(g)
	if err != nil {
		return nil, err
	}
	opts = append([]client.Option{client.WithTimeout(cfg.Client.Timeout)}, opts...)
	c, err := client.New(cfg.Client.URL, opts...)
	if err != nil {
		return nil, usageError{err}
	}
	return c, nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(rt *runtime) error {
	fmt.Fprintln(rt.stdout, Version())
	return nil
}

// run parses args, runs the selected command and returns the exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cli := &CLI{}
	exited := -1
	parser, err := kong.New(cli,
		kong.Name("taskmaster"),
		kong.Description("A small task tracker: API server, terminal UI and command-line client."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { exited = code }),
	)
	if err != nil {
		fmt.Fprintf(stderr, "taskmaster: %v\n", err)
		return exitBackendError
	}

	kctx, err := parser.Parse(args)
	if exited >= 0 {
		// --help and friends.
		return exited
	}
	if err != nil {
		fmt.Fprintf(stderr, "taskmaster: error: %v\n", err)
		return exitUserError
	}

	rt := &runtime{ctx: ctx, stdout: stdout, stderr: stderr, getenv: getenv}
	if err := kctx.Run(rt, &cli.Globals); err != nil {
		fmt.Fprintf(stderr, "taskmaster: %v\n", err)
		return exitCode(err)
	}
	return exitSuccess
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

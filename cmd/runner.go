package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nextmusic/internal/library"
	"github.com/desertthunder/nextmusic/internal/mpv"
	"github.com/desertthunder/nextmusic/internal/player"
	"github.com/desertthunder/nextmusic/internal/services"
	"github.com/desertthunder/nextmusic/internal/shared"
	"github.com/desertthunder/nextmusic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Store persists both the playlist library and the play history.
type Store interface {
	library.PlaylistStore
	library.HistoryStore
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config    *shared.Config
	catalog   services.Catalog
	library   *library.Library
	history   *library.History
	bootstrap player.Bootstrap
	logger    *log.Logger
	sink      *shared.LogSink
	output    io.Writer
	engine    *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config    *shared.Config
	Catalog   services.Catalog
	Store     Store
	Bootstrap player.Bootstrap
	Logger    *log.Logger
	LogSink   *shared.LogSink // the writer Logger was built on
	Output    io.Writer
}

// NewRunner creates a new Runner with the provided configuration.
//
// Without a Store the library and history commands report [shared.ErrServiceUnavailable].
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.LogSink == nil {
		opts.LogSink = shared.NewLogSink(nil)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(opts.LogSink)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Bootstrap == nil {
		opts.Bootstrap = mpv.Bootstrap(opts.Config.Player, shared.WithLogger(opts.Logger, "component", "mpv"))
	}

	r := &Runner{
		config:    opts.Config,
		catalog:   opts.Catalog,
		bootstrap: opts.Bootstrap,
		logger:    opts.Logger,
		sink:      opts.LogSink,
		output:    opts.Output,
		engine:    tasks.NewPlaylistEngine(opts.Catalog, opts.Logger),
	}
	if opts.Store != nil {
		r.library = library.NewLibrary(opts.Store, opts.Logger)
		r.history = library.NewHistory(opts.Store, opts.Logger)
	}
	return r
}

// redirectLogs moves all log output to the file at path until restore is called.
func (r *Runner) redirectLogs(path string) (restore func(), err error) {
	f, err := shared.OpenLogFile(path)
	if err != nil {
		return nil, err
	}

	prev := r.sink.Redirect(f)
	return func() {
		r.sink.Redirect(prev)
		f.Close()
	}, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, searchCommand, trendingCommand, generateCommand, playlistsCommand, historyCommand, playCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: catalog not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) requireLibrary() error {
	if r.library == nil || r.history == nil {
		return fmt.Errorf("%w: library not initialized, run 'nextmusic setup database'", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

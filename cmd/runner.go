package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/stores"
	"github.com/desertthunder/marquee/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	catalog     services.Catalog
	images      services.Images
	session     *stores.SessionStore
	collections *stores.CollectionStore
	engine      *tasks.Engine
	db          *sql.DB
	fs          afero.Fs
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	openURL     func(string) error
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Catalog     services.Catalog
	Session     *stores.SessionStore
	Collections *stores.CollectionStore
	FS          afero.Fs
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	OpenURL     func(string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.FS == nil {
		opts.FS = afero.NewOsFs()
	}
	if opts.Collections == nil {
		opts.Collections = stores.NewSeededCollectionStore()
	}
	if opts.OpenURL == nil {
		opts.OpenURL = shared.OpenBrowser
	}

	r := &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		catalog:     opts.Catalog,
		images:      services.NewImages(opts.Config.TMDB.ImageBaseURL),
		session:     opts.Session,
		collections: opts.Collections,
		fs:          opts.FS,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		openURL:     opts.OpenURL,
	}
	r.rebuildEngine()
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, moviesCommand, watchlistCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and its engine.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.rebuildEngine()
}

func (r *Runner) rebuildEngine() {
	r.engine = tasks.NewEngine(r.catalog, r.collections,
		tasks.WithImages(r.images),
		tasks.WithHTTPClient(r.httpClient),
		tasks.WithLogger(r.logger),
	)
}

// Bootstrap loads the configuration named by --config and wires the catalog, the authenticator and the session store from it.
//
// A missing config file falls back to the embedded defaults. A missing API key leaves the catalog unset so commands
// that do not need it still run.
func (r *Runner) Bootstrap(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		if config, err = shared.LoadConfig(r.configPath); err != nil {
			return ctx, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	if key := cmd.String("api-key"); key != "" {
		config.TMDB.APIKey = key
	}
	if level := cmd.String("log-level"); level != "" {
		config.Logging.Level = level
	}
	shared.SetLogLevel(r.logger, shared.ParseLogLevel(config.Logging.Level))

	r.config = config
	r.images = services.NewImages(config.TMDB.ImageBaseURL)

	if config.TMDB.APIKey != "" || config.TMDB.ReadAccessToken != "" {
		opts := services.TMDBOptionsFromConfig(config.TMDB)
		opts.HTTPClient = r.httpClient
		catalog, err := services.NewTMDBService(opts)
		if err != nil {
			return ctx, err
		}
		r.catalog = catalog
	} else {
		r.logger.Debug("no catalog credentials configured")
	}

	if config.NeedsDatabase() {
		db, err := shared.OpenDatabase(config.Database)
		if err != nil {
			return ctx, err
		}
		r.db = db
	}

	authenticator, err := r.authenticator(ctx)
	if err != nil {
		return ctx, err
	}
	r.session = stores.NewSessionStore(authenticator, r.identitySlot())
	r.session.Restore(ctx)

	r.rebuildEngine()
	return ctx, nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) authenticator(ctx context.Context) (stores.Authenticator, error) {
	if r.config.Accounts.Backend == "sqlite" {
		return auth.NewDirectory(repositories.NewAccountRepository(r.db)), nil
	}

	memory, err := auth.NewMemory(auth.DemoAccounts())
	if err != nil {
		return nil, fmt.Errorf("failed to seed demo accounts: %w", err)
	}
	return memory, nil
}

func (r *Runner) identitySlot() stores.IdentitySlot {
	if r.config.Session.Backend == "sqlite" {
		return repositories.NewSlotRepository(r.db, r.config.Session.Slot)
	}
	return repositories.NewFileSlot(r.fs, shared.ExpandHome(r.config.Session.Dir), r.config.Session.Slot)
}

func (r *Runner) requireCatalog() error {
	if r.catalog == nil {
		return fmt.Errorf("%w: set tmdb.api_key in %s or TMDB_API_KEY", shared.ErrMissingAPIKey, r.configPathOrDefault())
	}
	return nil
}

func (r *Runner) requireSession() error {
	if r.session == nil {
		return fmt.Errorf("%w: session store not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) configPathOrDefault() string {
	if r.configPath == "" {
		return "config.toml"
	}
	return r.configPath
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

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

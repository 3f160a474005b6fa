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
	"github.com/desertthunder/vdx/internal/auth"
	"github.com/desertthunder/vdx/internal/repositories"
	"github.com/desertthunder/vdx/internal/resolver"
	"github.com/desertthunder/vdx/internal/services"
	"github.com/desertthunder/vdx/internal/shared"
	"github.com/desertthunder/vdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Service dependencies are built lazily so that commands which never touch the
// network or the database do not pay for them. Tests inject doubles through
// [RunnerOpts] to bypass the lazy constructors.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	db       *sql.DB
	session  *auth.Session
	items    *repositories.ItemRepository
	videos   services.Source
	youtube  *services.YouTubeService
	pexels   services.Source
	docs     services.Source
	files    services.Source
	resolver *resolver.Resolver
	engine   *tasks.FeedEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer

	DB       *sql.DB
	Session  *auth.Session
	Videos   services.Source
	Pexels   services.Source
	Docs     services.Source
	Files    services.Source
	Resolver *resolver.Resolver
	Engine   *tasks.FeedEngine
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

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		session:    opts.Session,
		videos:     opts.Videos,
		pexels:     opts.Pexels,
		docs:       opts.Docs,
		files:      opts.Files,
		resolver:   opts.Resolver,
		engine:     opts.Engine,
	}
}

// SetLogger swaps the runner's logger. Used by the TUI to redirect log output
// to a file while bubbletea owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database handle if one was opened.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, feedCommand, resolveCommand, exportCommand, cacheCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureDatabase opens the configured database and brings the schema up to
// date. Migrations are versioned, so running them on every open is a no-op
// after the first.
func (r *Runner) ensureDatabase() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

func (r *Runner) ensureItems() (*repositories.ItemRepository, error) {
	if r.items != nil {
		return r.items, nil
	}
	db, err := r.ensureDatabase()
	if err != nil {
		return nil, err
	}
	r.items = repositories.NewItemRepository(db)
	return r.items, nil
}

// ensureSession builds the identity session over the database-backed token
// store and restores any persisted sign-in.
func (r *Runner) ensureSession(ctx context.Context) (*auth.Session, error) {
	if r.session != nil {
		return r.session, nil
	}

	db, err := r.ensureDatabase()
	if err != nil {
		return nil, err
	}

	logger := shared.WithLogger(r.logger, "service", "auth")
	provider := auth.NewRESTProvider(r.config.Credentials.Identity, logger)
	store := repositories.NewTokenRepository(db)
	session := auth.NewSession(provider, store, logger)
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	r.session = session
	return session, nil
}

// feedClient builds the HTTP client shared by the content gateways. Requests
// carry the session's bearer token when someone is signed in and go out
// unauthenticated otherwise.
func (r *Runner) feedClient(ctx context.Context) *http.Client {
	session, err := r.ensureSession(ctx)
	if err != nil {
		r.logger.Warn("session unavailable, requests will be unauthenticated", "error", err)
		return services.NewHTTPClient(nil)
	}
	return services.NewHTTPClient(session.TokenSource(ctx))
}

func (r *Runner) ensureYouTube(ctx context.Context) *services.YouTubeService {
	if r.youtube == nil {
		r.youtube = services.NewYouTubeService(r.config.Credentials.YouTube, r.config.Quota, r.feedClient(ctx), shared.WithLogger(r.logger, "service", "youtube"))
	}
	return r.youtube
}

func (r *Runner) ensureVideos(ctx context.Context) services.Source {
	if r.videos == nil {
		r.videos = services.NewVideoFeed(r.ensureYouTube(ctx), shared.WithLogger(r.logger, "service", "videos"))
	}
	return r.videos
}

func (r *Runner) ensurePexels(ctx context.Context) services.Source {
	if r.pexels == nil {
		r.pexels = services.NewPexelsService(r.config.Credentials.Pexels, r.feedClient(ctx), shared.WithLogger(r.logger, "service", "pexels"))
	}
	return r.pexels
}

func (r *Runner) ensureDocs(ctx context.Context) services.Source {
	if r.docs == nil {
		r.docs = services.NewOpenAlexService(r.config.Credentials.OpenAlex, r.feedClient(ctx), shared.WithLogger(r.logger, "service", "openalex"))
	}
	return r.docs
}

func (r *Runner) ensureFiles(ctx context.Context) services.Source {
	if r.files == nil {
		r.files = services.NewGitHubService(r.config.Credentials.GitHub, r.feedClient(ctx), shared.WithLogger(r.logger, "service", "github"))
	}
	return r.files
}

func (r *Runner) ensureResolver(ctx context.Context) *resolver.Resolver {
	if r.resolver == nil {
		logger := shared.WithLogger(r.logger, "service", "resolver")
		player := resolver.NewPlayerClient(r.config.Resolver.PlayerURL, r.feedClient(ctx), logger)
		r.resolver = resolver.New(player, r.config.Resolver, logger)
	}
	return r.resolver
}

func (r *Runner) ensureEngine(ctx context.Context) (*tasks.FeedEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}
	items, err := r.ensureItems()
	if err != nil {
		return nil, err
	}
	r.engine = tasks.NewFeedEngine(r.ensureResolver(ctx), items, r.logger)
	return r.engine, nil
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

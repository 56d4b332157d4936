package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/user"

	"github.com/alexanderramin/planbook/internal/cli"
	"github.com/alexanderramin/planbook/internal/cli/formatter"
	"github.com/alexanderramin/planbook/internal/config"
	"github.com/alexanderramin/planbook/internal/db"
	"github.com/alexanderramin/planbook/internal/feed"
	"github.com/alexanderramin/planbook/internal/repository"
	"github.com/alexanderramin/planbook/internal/search"
	"github.com/alexanderramin/planbook/internal/service"
	"github.com/alexanderramin/planbook/internal/taxonomy"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.Load()

	// Plain output when piped.
	formatter.SetColorEnabled(isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()))

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repository and unit of work
	planRepo := repository.NewSQLitePlanRecordRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// Search index is rebuilt from the store on every start.
	index := search.NewMemoryIndex()
	if _, err := service.Reindex(ctx, planRepo, index, logger); err != nil {
		return fmt.Errorf("building search index: %w", err)
	}

	activation := feed.NewActivationFeed()
	deletion := feed.NewDeleteFeed()

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogUseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
		activation.Subscribe(feed.LogHandler[feed.ActivationEvent](logger, "plan_activated"))
		deletion.Subscribe(feed.LogHandler[feed.DeleteEvent](logger, "plan_deleted"))
	}

	plans := service.NewDefinitionManager(
		planRepo,
		uow,
		taxonomy.NewStaticResolver(cfg.Classifications),
		index,
		activation,
		deletion,
		&service.Settings{ReadOnly: cfg.ReadOnly},
		observer,
	)

	app := &cli.App{
		Plans:  plans,
		Import: service.NewImportService(plans, cfg.DefaultCulture, currentUser()),
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "planbook"
}

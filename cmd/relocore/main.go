package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/relocore/relocore/cmd/relocore/cli"
	"github.com/relocore/relocore/internal/app"
	"github.com/relocore/relocore/internal/charges"
	"github.com/relocore/relocore/internal/observability"
	"github.com/relocore/relocore/internal/platform/db"
	"github.com/relocore/relocore/internal/quotations"
	"github.com/relocore/relocore/internal/rates"
	"github.com/relocore/relocore/internal/shared"
	"github.com/relocore/relocore/internal/surveys"
	"github.com/relocore/relocore/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if len(os.Args) > 1 {
		os.Exit(runSubcommand(ctx, cfg, logger, os.Args[1:]))
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	idempotencyStore := shared.NewIdempotencyStore(pool)

	ratesRepo := rates.NewRepository(pool)
	ratesCache := rates.NewCache(redisClient, cfg.RateCacheTTL)
	ratesService := rates.NewService(ratesRepo, ratesCache, logger)
	ratesHandler := rates.NewHandler(logger, ratesService)

	chargesRepo := charges.NewRepository(pool)
	chargesService := charges.NewService(chargesRepo)
	chargesHandler := charges.NewHandler(logger, chargesService)

	surveysRepo := surveys.NewRepository(pool)
	surveysService := surveys.NewService(surveysRepo)
	surveysHandler := surveys.NewHandler(logger, surveysService)

	quotationsRepo := quotations.NewRepository(pool)
	quotationsService := quotations.NewService(
		quotationsRepo,
		surveysService,
		chargesService,
		ratesService,
		idempotencyStore,
		metrics,
		logger,
		cfg.DefaultCurrency,
	)
	quotationsHandler := quotations.NewHandler(logger, quotationsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		RatesHandler:      ratesHandler,
		ChargesHandler:    chargesHandler,
		SurveysHandler:    surveysHandler,
		QuotationsHandler: quotationsHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runSubcommand(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	switch args[0] {
	case "jobs":
		return runJobs(ctx, cfg, logger, args[1:])
	case "rates":
		return runRates(ctx, cfg, logger, args[1:])
	default:
		logger.Error("unknown subcommand", slog.String("command", args[0]))
		return 2
	}
}

func runJobs(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	if len(args) < 1 {
		logger.Error("usage: relocore jobs trigger <task> | relocore jobs inspect [--json]")
		return 2
	}
	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		logger.Error("init jobs cli", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := jobsCLI.Close(); err != nil {
			logger.Warn("jobs cli close", slog.Any("error", err))
		}
	}()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			logger.Error("usage: relocore jobs trigger <task>")
			return 2
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			logger.Error("trigger job", slog.String("task", args[1]), slog.Any("error", err))
			return 1
		}
		logger.Info("job enqueued", slog.String("task", args[1]), slog.String("id", info.ID))
		return 0
	case "inspect":
		jsonOutput := false
		for _, arg := range args[1:] {
			if arg == "--json" {
				jsonOutput = true
			}
		}
		if err := cli.RunJobsInspect(ctx, jobsCLI, cli.JobsInspectOptions{JSONOutput: jsonOutput}); err != nil {
			return 1
		}
		return 0
	default:
		logger.Error("usage: relocore jobs trigger <task> | relocore jobs inspect [--json]")
		return 2
	}
}

func runRates(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string) int {
	if len(args) < 1 || args[0] != "validate" {
		logger.Error("usage: relocore rates validate [destination] [--json]")
		return 2
	}

	var destination string
	jsonOutput := false
	for _, arg := range args[1:] {
		if arg == "--json" {
			jsonOutput = true
			continue
		}
		destination = arg
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		return 1
	}
	defer pool.Close()

	ratesService := rates.NewService(rates.NewRepository(pool), rates.NewCache(nil, 0), logger)
	err = cli.RunRatesValidate(ctx, ratesService, cli.RatesValidateOptions{
		DestinationCity: destination,
		JSONOutput:      jsonOutput,
	})
	if err != nil {
		return 1
	}
	return 0
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/limbo/studytrack/internal/api"
	"github.com/limbo/studytrack/internal/planner"
	"github.com/limbo/studytrack/internal/repository"
	"github.com/limbo/studytrack/internal/service"
	"github.com/limbo/studytrack/pkg/cleanup"
	"github.com/limbo/studytrack/pkg/config"
	jwtservice "github.com/limbo/studytrack/pkg/jwt_service"
	"github.com/limbo/studytrack/pkg/logctx"
	"github.com/limbo/studytrack/pkg/redislock"
	"github.com/limbo/studytrack/pkg/scheduler"
)

const (
	sweepTimeout    = 30 * time.Minute
	shutdownTimeout = 15 * time.Second
)

func init() {
	service.InitValidator()
}

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	cfg := config.New()
	loc := cfg.GetLocation("TIMEZONE")
	clock := service.LocalClock{Loc: loc}
	defaultExamDate := cfg.GetDateTime("DEFAULT_EXAM_DATE", time.Date(2025, 12, 20, 8, 30, 0, 0, loc), loc)

	catalog, err := planner.LoadCatalog(cfg.GetString("SUBJECT_CATALOG_PATH"))
	if err != nil {
		log.Fatal("loading subject catalog error: " + err.Error())
	}

	dbCfg := repository.PGCfg{
		Address:  cfg.GetString("POSTGRES_DB_ADDRESS"),
		Username: cfg.GetString("POSTGRES_USER"),
		Password: cfg.GetString("POSTGRES_PASSWORD"),
		DB:       cfg.GetString("POSTGRES_DB"),
	}
	pool := repository.NewPool(&dbCfg)
	usersRepo := repository.NewUsersRepoWithConn(pool)
	checkInsRepo := repository.NewCheckInsRepoWithConn(pool)
	tasksRepo := repository.NewTasksRepoWithConn(pool)

	genOpts := []service.GenerationOption{service.WithClock(clock)}
	if addr := cfg.GetString("REDIS_ADDRESS"); addr != "" {
		client, err := redislock.NewClient(redislock.Config{
			Address:  addr,
			Password: cfg.GetString("REDIS_PASSWORD"),
			DB:       cfg.GetInt("REDIS_DB", 0),
		})
		if err != nil {
			log.Fatal("connecting redis error: " + err.Error())
		}
		genOpts = append(genOpts, service.WithLocker(redislock.New(client, "studytrack:")))
	} else {
		slog.Warn("REDIS_ADDRESS is empty, generation runs without distributed lock")
	}

	generationService := service.NewGenerationService(usersRepo, checkInsRepo, tasksRepo, planner.NewEngine(catalog), service.GenerationSettings{
		DefaultExamDate: defaultExamDate,
		PatternWindow:   cfg.GetInt("PATTERN_WINDOW_DAYS", 7),
		ActiveWindow:    cfg.GetInt("ACTIVE_WINDOW_DAYS", 7),
	}, genOpts...)

	sched := scheduler.New(loc)
	entry, err := sched.ScheduleDaily(cfg.GetStringOr("GENERATION_TIME", "02:00"), func() {
		logger := slog.Default().With(slog.String("job", "generation sweep"))
		ctx, cancel := context.WithTimeout(logctx.With(context.Background(), logger), sweepTimeout)
		defer cancel()
		res, err := generationService.Sweep(ctx)
		if err != nil {
			logger.Error("sweep failed", slog.String("error", err.Error()))
			return
		}
		logger.Info("sweep finished",
			slog.Int("scanned", res.Scanned),
			slog.Int("generated", res.Generated),
			slog.Int("skipped", res.Skipped),
			slog.Int("failed", res.Failed),
		)
	})
	if err != nil {
		log.Fatal("scheduling generation sweep error: " + err.Error())
	}
	sched.Start()
	slog.Info("generation sweep scheduled", slog.Time("next", sched.Next(entry)))

	serv := api.New(&api.ServicesList{
		UserService:       service.NewUserService(usersRepo, checkInsRepo, tasksRepo, clock, defaultExamDate),
		CheckInService:    service.NewCheckInService(checkInsRepo, generationService, clock),
		TaskService:       service.NewTaskService(tasksRepo, clock),
		GenerationService: generationService,
		JwtService:        jwtservice.New(cfg.GetString("JWT_SECRET"), time.Duration(cfg.GetInt("JWT_TTL_HOURS", 24))*time.Hour),
		Location:          loc,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		addr := cfg.GetStringOr("API_ADDRESS", ":8080")
		slog.Info("server started", slog.String("address", addr))
		if err := serv.Run(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()
	<-ctx.Done()

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := serv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", slog.String("error", err.Error()))
	}
	if err := sched.Stop(shutdownCtx); err != nil {
		slog.Error("scheduler stop error", slog.String("error", err.Error()))
	}
	if err := cleanup.CleanUp(); err != nil {
		slog.Error("cleanup error", slog.String("error", err.Error()))
	}
}

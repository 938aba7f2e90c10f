package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quiz-progress-service/internal/app"
	"quiz-progress-service/internal/config"
	"quiz-progress-service/internal/domain"
	kafkapub "quiz-progress-service/internal/infra/kafka"
	"quiz-progress-service/internal/infra/memory"
	mongostore "quiz-progress-service/internal/infra/mongo"
	pgstore "quiz-progress-service/internal/infra/postgres"
	redisstore "quiz-progress-service/internal/infra/redis"
	transport "quiz-progress-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the progress server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends holds the adapters chosen from config plus the closers for what was opened.
type backends struct {
	activities app.ActivityRepository
	quizzes    app.QuizRepository
	users      app.UserDirectory
	locker     app.UserLocker
	publisher  app.EventPublisher
	closers    []func()
}

func (b *backends) close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	if cfg.Postgres.URL != "" {
		if err := runMigrations(ctx, cfg, logger); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	deps, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	opts := []app.Option{
		app.WithRules(cfg.Rules()),
		app.WithLocation(loc),
		app.WithLocker(deps.locker),
		app.WithLogger(logger),
	}
	if deps.publisher != nil {
		opts = append(opts, app.WithPublisher(deps.publisher))
	}
	service := app.NewProgressService(deps.activities, deps.quizzes, deps.users, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", transport.NewWSHandler(service, logger).ServeWS)
	transport.NewHandler(service, logger).Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting progress service", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openBackends picks an adapter per port: mongo or postgres for activities, postgres or the
// built-in catalog for quizzes, redis or process memory for the catalog cache and user locks.
func openBackends(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backends, error) {
	deps := &backends{}
	fail := func(err error) (*backends, error) {
		deps.close()
		return nil, err
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		var err error
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fail(fmt.Errorf("connect postgres: %w", err))
		}
		deps.closers = append(deps.closers, pool.Close)
	}

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
		deps.users = pgstore.NewUserDirectory(pool)
		deps.activities = pgstore.NewActivityRepository(pool)
	} else {
		deps.users = memory.NewUserDirectory()
		deps.activities = memory.NewActivityStore()
	}

	if cfg.Mongo.URI != "" {
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return fail(fmt.Errorf("connect mongo: %w", err))
		}
		deps.closers = append(deps.closers, func() { _ = client.Disconnect(context.Background()) })
		if err := client.Ping(ctx, nil); err != nil {
			return fail(fmt.Errorf("ping mongo: %w", err))
		}
		database := cfg.Mongo.Database
		if database == "" {
			database = "quiz_progress"
		}
		repo := mongostore.NewActivityRepository(client.Database(database))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return fail(fmt.Errorf("mongo indexes: %w", err))
		}
		deps.activities = repo
		logger.Info("activities stored in mongo", slog.String("database", database))
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		deps.closers = append(deps.closers, func() { _ = client.Close() })
		deps.quizzes = redisstore.NewQuizRepository(client, loader, quizTTL)
		deps.locker = redisstore.NewUserLocker(client,
			config.TTLDuration(cfg.Redis.LockTTL, 5*time.Second),
			config.TTLDuration(cfg.Redis.LockWait, 2*time.Second),
		)
	} else {
		deps.quizzes = memory.NewQuizRepository(loader, quizTTL)
		deps.locker = memory.NewUserLocker()
	}

	if len(cfg.Kafka.Brokers) > 0 {
		topic := cfg.Kafka.Topic
		if topic == "" {
			topic = "progress-events"
		}
		publisher := kafkapub.NewPublisher(cfg.Kafka.Brokers, topic)
		deps.closers = append(deps.closers, func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("close kafka writer", slog.Any("error", err))
			}
		})
		deps.publisher = publisher
	}
	return deps, nil
}

// sampleQuizzes is the catalog served when no database is configured.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"quiz-1": {
			ID:    "quiz-1",
			Title: "Warm-up",
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{Value: "3", Text: "3"},
						{Value: "4", Text: "4"},
						{Value: "5", Text: "5"},
					},
					CorrectAnswers: []domain.AnswerValue{{Value: "4"}},
					Description:    "Two plus two is four.",
					Points:         10,
				},
				{
					ID:     "q2",
					Prompt: "Which of these are primes?",
					Options: []domain.Option{
						{Value: "2", Text: "2"},
						{Value: "3", Text: "3"},
						{Value: "4", Text: "4"},
					},
					CorrectAnswers: []domain.AnswerValue{{Value: "2"}, {Value: "3"}},
					Points:         5,
				},
				{
					ID:       "s1",
					Prompt:   "How did you like this quiz?",
					IsSurvey: true,
				},
			},
		},
	}
}

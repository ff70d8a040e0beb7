package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"category-quiz-service/internal/app"
	"category-quiz-service/internal/auth"
	"category-quiz-service/internal/config"
	"category-quiz-service/internal/infra/memory"
	objectstore "category-quiz-service/internal/infra/minio"
	mongostore "category-quiz-service/internal/infra/mongo"
	pgstore "category-quiz-service/internal/infra/postgres"
	"category-quiz-service/internal/infra/rabbitmq"
	redisstore "category-quiz-service/internal/infra/redis"
	"category-quiz-service/internal/quiz"
	transport "category-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

// backends holds every optional external connection; nil fields are not configured.
type backends struct {
	redis *redis.Client
	pool  *pgxpool.Pool
	mongo *mongostore.ProfileStore
	close []func()
}

func (b *backends) shutdown() {
	for i := len(b.close) - 1; i >= 0; i-- {
		b.close[i]()
	}
}

func connectBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}
	if cfg.Redis.Addr != "" {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.close = append(b.close, func() { _ = b.redis.Close() })
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			b.shutdown()
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.shutdown()
			return nil, err
		}
		b.pool = pool
		b.close = append(b.close, pool.Close)
	}
	if cfg.Mongo.URI != "" {
		client, db, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			b.shutdown()
			return nil, err
		}
		b.close = append(b.close, func() { mongostore.Disconnect(client) })
		b.mongo = mongostore.NewProfileStore(db)
		if err := b.mongo.EnsureIndexes(ctx); err != nil {
			log.Printf("mongo indexes: %v", err)
		}
	}
	return b, nil
}

func profileStore(cfg config.Config, b *backends) (app.ProfileStore, error) {
	switch backend := cfg.ProfileBackend(); backend {
	case "mongo":
		if b.mongo == nil {
			return nil, fmt.Errorf("profiles backend mongo requires mongo.uri")
		}
		return b.mongo, nil
	case "postgres":
		if b.pool == nil {
			return nil, fmt.Errorf("profiles backend postgres requires postgres.url")
		}
		return pgstore.NewProfileStore(b.pool), nil
	case "memory":
		return memory.NewProfileStore(), nil
	default:
		return nil, fmt.Errorf("unknown profiles backend %q", backend)
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	b, err := connectBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.shutdown()

	storeTimeout := config.TTLDuration(cfg.Quiz.StoreTimeout, quiz.DefaultStoreTimeout)

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if b.pool != nil {
		pgLoader := pgstore.NewQuestionLoader(b.pool)
		if err := pgLoader.Seed(ctx, sampleQuestions()); err != nil {
			return err
		}
		loader = pgLoader
	}

	questionTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if b.redis != nil {
		questions = redisstore.NewQuestionRepository(b.redis, loader, questionTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
	}

	var sessions app.SessionRepository
	if b.redis != nil {
		sessions = redisstore.NewSessionStore(b.redis, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))
	} else {
		sessions = memory.NewSessionStore()
	}

	profiles, err := profileStore(cfg, b)
	if err != nil {
		return err
	}

	var accounts app.AccountStore = memory.NewAccountStore()
	if b.pool != nil {
		accounts = pgstore.NewAccountStore(b.pool)
	}

	maxAttempts := cfg.Auth.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	attemptWindow := config.TTLDuration(cfg.Auth.AttemptWindow, 15*time.Minute)
	var limiter app.AttemptLimiter = memory.NewAttemptLimiter(maxAttempts, attemptWindow)
	if b.redis != nil {
		limiter = redisstore.NewAttemptLimiter(b.redis, maxAttempts, attemptWindow)
	}

	var objects app.ObjectStore
	var uploads http.Handler
	if cfg.MinIO.Endpoint != "" {
		objects, err = objectstore.NewObjectStore(ctx, objectstore.Config{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKeyID,
			SecretAccessKey: cfg.MinIO.SecretAccessKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Region:          cfg.MinIO.Region,
			Bucket:          cfg.MinIO.Bucket,
			PublicURL:       cfg.MinIO.PublicURL,
		})
		if err != nil {
			return err
		}
	} else {
		publicURL := cfg.Server.PublicURL
		if publicURL == "" {
			publicURL = "http://localhost:" + finalPort + "/uploads"
		}
		local := memory.NewObjectStore(publicURL)
		objects, uploads = local, local
	}

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL)
	if err != nil {
		return err
	}
	defer publisher.Close()

	quizzes := app.NewQuizService(sessions, questions, app.NewScoreRecorder(profiles, publisher), quiz.Options{
		SessionSize:  cfg.Quiz.SessionSize,
		RevealDelay:  config.TTLDuration(cfg.Quiz.RevealDelay, quiz.DefaultRevealDelay),
		SubmitDelay:  config.TTLDuration(cfg.Quiz.SubmitDelay, quiz.DefaultSubmitDelay),
		StoreTimeout: storeTimeout,
	})

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret not configured")
	}
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, config.TTLDuration(cfg.Auth.TokenTTL, 24*time.Hour))

	router := transport.NewRouter(transport.Services{
		Auth: app.NewAuthService(accounts, profiles, tokens, limiter, quizzes, app.AuthOptions{
			DefaultPicture: cfg.Auth.DefaultPicture,
			StoreTimeout:   storeTimeout,
		}),
		Quizzes:     quizzes,
		Leaderboard: app.NewLeaderboardService(profiles, storeTimeout),
		Profiles:    app.NewProfileService(profiles, objects, storeTimeout),
		Uploads:     uploads,
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz service on :%s (profiles: %s)", finalPort, cfg.ProfileBackend())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

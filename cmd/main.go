package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dtroode/homescout/internal/auth"
	"github.com/dtroode/homescout/internal/config"
	"github.com/dtroode/homescout/internal/logger"
	"github.com/dtroode/homescout/internal/model"
	"github.com/dtroode/homescout/internal/repository/postgres"
	"github.com/dtroode/homescout/internal/repository/sqlite"
	"github.com/dtroode/homescout/internal/search"
	"github.com/dtroode/homescout/internal/service"
	"github.com/dtroode/homescout/internal/state"
	"github.com/dtroode/homescout/internal/storage/memory"
	storage "github.com/dtroode/homescout/internal/storage/minio"
	redisstore "github.com/dtroode/homescout/internal/storage/redis"
	"github.com/dtroode/homescout/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogFormat)

	kv, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage", "backend", cfg.Storage.Backend, "error", err)
	}

	app, err := newApp(ctx, cfg, kv, logger)
	if err != nil {
		closeStore(kv, logger)
		logger.Fatal("failed to restore state", "error", err)
	}

	err = app.run(ctx, os.Args[1:])
	closeStore(kv, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(exitCode(err))
	}
}

func closeStore(kv model.KVStore, logger *logger.Logger) {
	if err := kv.Close(); err != nil {
		logger.Error("failed to close storage", "error", err)
	}
}

// openStore connects the configured key-value backend.
func openStore(ctx context.Context, cfg *config.Config) (model.KVStore, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return memory.New(), nil

	case config.BackendSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return sqlite.NewKVRepository(db), nil

	case config.BackendPostgres:
		conn, err := postgres.NewConnection(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return postgres.NewKVRepository(conn), nil

	case config.BackendRedis:
		return redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.KeyPrefix,
		})

	case config.BackendMinio:
		minioClient, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
			Secure: cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return storage.NewClient(ctx, minioClient, cfg.Minio.Bucket, "")

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// newApp wires the services over kv and rehydrates persisted state.
func newApp(ctx context.Context, cfg *config.Config, kv model.KVStore, logger *logger.Logger) (*app, error) {
	policy, err := search.ParseRoomPolicy(cfg.Search.RoomPolicy)
	if err != nil {
		return nil, err
	}

	store := state.NewStore(kv, cfg.Storage.Timeout)
	hasher := auth.NewArgon2(auth.KDFParams{Time: cfg.KDF.Time, MemKiB: cfg.KDF.MemKiB, Par: cfg.KDF.Par})
	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.SessionTTL)

	identity := service.NewIdentity(store, hasher, tokenManager, logger, cfg.State.Strict)
	listings := service.NewListings(identity, store, search.NewEngine(search.WithRoomPolicy(policy)), logger, cfg.State.Strict)

	if err := identity.Restore(ctx); err != nil {
		return nil, err
	}
	if err := listings.Load(ctx); err != nil {
		return nil, err
	}

	return &app{
		identity: identity,
		listings: listings,
		pageSize: cfg.Search.PageSize,
		feedSize: cfg.FeedSize,
		out:      os.Stdout,
	}, nil
}

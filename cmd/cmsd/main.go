package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"inkwell/cms/internal/cache"
	"inkwell/cms/internal/config"
	"inkwell/cms/internal/database"
	"inkwell/cms/internal/ids"
	"inkwell/cms/internal/jobs"
	"inkwell/cms/internal/log"
	"inkwell/cms/internal/models"
	"inkwell/cms/internal/repository"
	"inkwell/cms/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment)

	ctx := context.Background()

	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect mongo")
	}

	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	var settingsCache *cache.SettingsCache
	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, running without settings cache")
	} else if cfg.Cache.Enabled {
		settingsCache = cache.NewSettingsCache(redisClient, cfg.Cache.KeyPrefix, cfg.Cache.PublicTTL)
	}

	settings := repository.NewSettingsRepository(db, settingsCache, logger)
	users := repository.NewUserRepository(db)
	sessions := repository.NewSessionRepository(db)
	analytics := repository.NewAnalyticsRepository(db)

	if err := settings.InitializeDefaults(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed default settings")
	}

	if err := ensureAdminUser(ctx, users, cfg.Admin, logger); err != nil {
		logger.Fatal().Err(err).Msg("failed to ensure admin user")
	}

	maintenance := jobs.NewMaintenance(sessions, analytics, cfg.Retention, logger)
	if err := maintenance.Start(); err != nil {
		logger.Fatal().Err(err).Msg("failed to start maintenance jobs")
	}

	logger.Info().Str("database", cfg.Mongo.Database).Msg("cmsd ready")

	waitForShutdown(logger, maintenance, client, redisClient)
}

// ensureAdminUser seeds the first super admin when the users collection has
// none. A generated password is logged once if none is configured.
func ensureAdminUser(ctx context.Context, users *repository.UserRepository, cfg config.AdminConfig, logger zerolog.Logger) error {
	exists, err := users.Exists(ctx, bson.M{"role": models.UserRoleSuperAdmin})
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	password := cfg.Password
	generated := password == ""
	if generated {
		password = ids.NewVerificationToken()
	}

	hash, salt, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     cfg.Username,
		Email:        cfg.Email,
		PasswordHash: hash,
		Salt:         salt,
		Role:         models.UserRoleSuperAdmin,
		Status:       models.UserStatusActive,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	event := logger.Info().Str("username", cfg.Username)
	if generated {
		event = event.Str("password", password)
	}
	event.Msg("created initial super admin")
	return nil
}

func waitForShutdown(logger zerolog.Logger, maintenance *jobs.Maintenance, client *mongo.Client, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	maintenance.Stop()

	disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(disconnectCtx); err != nil {
		logger.Error().Err(err).Msg("mongo disconnect error")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("cmsd exited cleanly")
}

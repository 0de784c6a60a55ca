// main.go
package main

import (
	"context"
	"log"

	"instructor-portal/cmd"
	"instructor-portal/internal/data/repository"
	"instructor-portal/internal/usecase"
	"instructor-portal/internal/wire"
	"instructor-portal/pkg/content"
	"instructor-portal/pkg/database"
	"instructor-portal/pkg/identity"
	"instructor-portal/pkg/mailer"
	"instructor-portal/pkg/metrics"
	"instructor-portal/pkg/payment"
	"instructor-portal/pkg/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("env", config.App.Env),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	if config.Database.AutoMigrate {
		if err := database.RunMigrations(context.Background(), db.StdDB()); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	// Cart storage
	rdb := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}

	// External providers
	var mail usecase.Mailer
	if config.Email.Host == "" {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		mail = mailer.NewLogMailer(logger)
	} else {
		mail, err = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     config.Email.Host,
			Port:     config.Email.Port,
			User:     config.Email.User,
			Password: config.Email.Password,
		})
		if err != nil {
			logger.Fatal("Failed to configure SMTP mailer", zap.Error(err))
		}
	}

	contentClient, err := content.NewClient(content.Config{
		BaseURL: config.Content.APIURL,
		Token:   config.Content.Token,
	})
	if err != nil {
		logger.Fatal("Failed to configure content client", zap.Error(err))
	}

	providers := usecase.Providers{
		Identity: identity.NewClient(identity.Config{
			BaseURL:        config.Auth.URL,
			AnonKey:        config.Auth.AnonKey,
			ServiceRoleKey: config.Auth.ServiceRoleKey,
			JWTSecret:      config.Auth.JWTSecret,
		}),
		Payment: payment.NewClient(payment.Config{
			BaseURL:    config.Payment.APIURL,
			SecretKey:  config.Payment.SecretKey,
			MaxRetries: 2,
		}, logger),
		Mailer:  mail,
		Content: contentClient,
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewCollector(registry)

	// Initialize all repositories
	repos := repository.NewRepository(db, repository.NewRedisCartStorage(rdb, config.Redis.CartTTL, logger), logger)

	// Wire all dependencies
	app := wire.Wiring(wire.Deps{
		Repo:      repos,
		Providers: providers,
		Recorder:  recorder,
		Gatherer:  registry,
		Health: []wire.Pinger{
			db,
			wire.PingerFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		},
	}, config, logger)

	if err := cmd.APIServer(app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
	}
}

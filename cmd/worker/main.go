package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-notify-dispatch/internal/config"
	"github.com/go-notify-dispatch/internal/dispatch"
	"github.com/go-notify-dispatch/internal/domain"
	"github.com/go-notify-dispatch/internal/infrastructure/dynamo"
	"github.com/go-notify-dispatch/internal/infrastructure/openai"
	s3infra "github.com/go-notify-dispatch/internal/infrastructure/s3"
	"github.com/go-notify-dispatch/internal/infrastructure/smtp"
	"github.com/go-notify-dispatch/internal/infrastructure/sns"
	sqsinfra "github.com/go-notify-dispatch/internal/infrastructure/sqs"
	"github.com/go-notify-dispatch/internal/infrastructure/webhook"
	"github.com/go-notify-dispatch/internal/scoring"
	transporthttp "github.com/go-notify-dispatch/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)
	rateLimits := dynamo.NewRateLimitRepo(dynamoClient, cfg.DynamoTables.RateLimits)

	// Scoring service (optional external backend — heuristic-only without it).
	var backend scoring.Backend
	if cfg.ScoringEndpoint != "" {
		backend = openai.NewClient(cfg)
	} else {
		log.Println("WARN: no scoring endpoint configured, running on heuristic scoring only")
	}
	scorer := scoring.NewService(backend, cfg.ScoringRetryMax, cfg.ScoringRetryBase, cfg.ScoringRPS)

	// Delivery providers. Email is always available; the rest are optional
	// with a graceful fallback, like any other missing external.
	registry := dispatch.NewRegistry()
	registry.Register(domain.ChannelEmail, smtp.NewMailer(cfg))
	if sender, err := sns.NewSender(cfg); err == nil {
		registry.Register(domain.ChannelPush, sender)
		registry.Register(domain.ChannelSMS, sender)
	} else {
		log.Printf("WARN: SNS sender not available: %v", err)
	}
	if sender, err := webhook.NewSender(cfg); err == nil {
		registry.Register(domain.ChannelWebhook, sender)
	} else {
		log.Printf("WARN: webhook sender not available: %v", err)
	}

	guard := dispatch.NewGuard(rateLimits, cfg.RateLimitWindow, cfg.RateLimitCapacity)
	controller := dispatch.NewController(guard, registry)

	// SQS transport: consumer pool in, publisher out.
	sqsClient := sqsinfra.NewClient(cfg)
	publisher := sqsinfra.NewPublisher(sqsClient, cfg.QueueURL)
	consumer := sqsinfra.NewConsumer(sqsClient, cfg.QueueURL, controller, cfg.WorkerCount)

	// S3 batch loader.
	loader := s3infra.NewLoader(s3infra.NewClient(cfg), cfg.EventBucket, scorer, publisher)

	router := transporthttp.NewRouter(cfg, &transporthttp.Deps{
		Scorer:     scorer,
		RateLimits: rateLimits,
		Loader:     loader,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	if cfg.QueueURL != "" {
		go func() {
			defer close(consumerDone)
			log.Printf("Dispatch consumer starting with %d workers", cfg.WorkerCount)
			consumer.Run(consumerCtx)
		}()
	} else {
		close(consumerDone)
		log.Println("WARN: SQS_QUEUE_URL not set, dispatch consumer disabled")
	}

	go func() {
		log.Printf("Ops server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	select {
	case <-consumerDone:
	case <-ctx.Done():
	}
	log.Println("Stopped")
}

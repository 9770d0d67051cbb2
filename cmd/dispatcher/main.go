package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dmelo/gram-dispatch/internal/api"
	"github.com/dmelo/gram-dispatch/internal/dedup"
	"github.com/dmelo/gram-dispatch/internal/engine"
	"github.com/dmelo/gram-dispatch/internal/instagram"
	"github.com/dmelo/gram-dispatch/internal/quota"
	"github.com/dmelo/gram-dispatch/internal/registry"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func main() {
	godotenv.Load()

	// Config from env
	dynamoTable := getenv("DYNAMODB_TABLE", "clients")
	dynamoEndpoint := os.Getenv("DYNAMODB_ENDPOINT")
	redisAddr := os.Getenv("REDIS_ADDR") // empty = in-memory dedup/quota
	graphAPIURL := os.Getenv("GRAPH_API_URL")
	port := getenv("PORT", "8080")
	dedupWindow := getenvDuration("DEDUP_WINDOW", dedup.DefaultWindow)
	cacheTTL := getenvDuration("REGISTRY_CACHE_TTL", 30*time.Second)
	sendTimeout := getenvDuration("SEND_TIMEOUT", 10*time.Second)
	localMode := os.Getenv("LOCAL_MODE") == "true" || dynamoEndpoint != ""

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// AWS DynamoDB
	var awsOptFns []func(*config.LoadOptions) error
	if localMode {
		// Use static credentials for local DynamoDB
		awsOptFns = append(awsOptFns,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				getenv("AWS_ACCESS_KEY_ID", "test"),
				getenv("AWS_SECRET_ACCESS_KEY", "test"),
				"",
			)),
		)
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, awsOptFns...)
	if err != nil {
		slog.Error("load AWS config", "err", err)
		os.Exit(1)
	}
	var dynamoOpts []func(*dynamodb.Options)
	if dynamoEndpoint != "" {
		dynamoOpts = append(dynamoOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = &dynamoEndpoint
		})
	}
	db := dynamodb.NewFromConfig(awsCfg, dynamoOpts...)

	var reg registry.Client = registry.New(db, dynamoTable)
	if cacheTTL > 0 {
		reg = registry.NewCached(reg, cacheTTL)
	}

	// Dedup + quota: Redis when available (shared across replicas),
	// in-memory otherwise.
	var dd dedup.Deduplicator
	var qt quota.Tracker
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		dd = dedup.NewRedis(rdb, dedupWindow)
		qt = quota.NewRedis(rdb)
		slog.Info("using redis state", "addr", redisAddr)
	} else {
		mem := dedup.NewMemory(dedupWindow)
		go mem.Run(ctx)
		dd = mem
		qt = quota.NewMemory()
		slog.Warn("REDIS_ADDR not set — dedup and quota state is process-local")
	}

	// Outbound sender
	var sender engine.Sender
	if graphAPIURL != "" {
		sender = instagram.NewWithBaseURL(graphAPIURL, sendTimeout)
	} else {
		sender = instagram.New(sendTimeout)
	}

	eng := engine.New(reg, dd, qt, sender, engine.Config{SendTimeout: sendTimeout})
	h := api.New(reg, eng, qt)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: h.Router(),
	}

	go func() {
		slog.Info("dispatcher listening", "port", port, "local_mode", localMode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	// Events past the dedup step are already marked seen; abandoning them
	// now would drop replies. Drain before exiting.
	if err := eng.Drain(shutdownCtx); err != nil {
		slog.Warn("drain incomplete", "err", err)
	}
}

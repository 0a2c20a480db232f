package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contoso-notify/internal/application/notification"
	"github.com/contoso-notify/internal/config"
	"github.com/contoso-notify/internal/infrastructure/dynamo"
	jwtinfra "github.com/contoso-notify/internal/infrastructure/jwt"
	"github.com/contoso-notify/internal/infrastructure/memqueue"
	"github.com/contoso-notify/internal/infrastructure/redisqueue"
	snsinfra "github.com/contoso-notify/internal/infrastructure/sns"
	sqsinfra "github.com/contoso-notify/internal/infrastructure/sqs"
	transporthttp "github.com/contoso-notify/internal/transport/http"
	"github.com/contoso-notify/internal/transport/http/handler"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	transport, closeTransport, err := newTransport(ctx, cfg)
	if err != nil {
		log.Fatalf("notification transport: %v", err)
	}
	defer closeTransport()

	deps := &transporthttp.Deps{
		Notifications: notification.NewService(transport),
		TransportName: cfg.Notify.Transport,
		QueueDepth:    queueDepth(transport),
	}

	// Producer authentication is optional: without a public key the events
	// endpoint is open, as for a single trusted network.
	if cfg.JWTPublicKeyPath != "" {
		p, err := jwtinfra.NewProvider(cfg)
		if err != nil {
			log.Fatalf("producer auth: %v", err)
		}
		deps.ProducerAuth = p
	} else {
		log.Println("WARN: JWT_PUBLIC_KEY_PATH not set, events endpoint accepts unauthenticated producers")
	}

	router := transporthttp.NewRouter(ctx, cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s, transport=%s)", cfg.AppPort, cfg.AppEnv, cfg.Notify.Transport)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// newTransport builds the transport selected by NOTIFY_TRANSPORT. The
// returned func releases any client connections.
func newTransport(ctx context.Context, cfg *config.Config) (notification.Transport, func(), error) {
	noop := func() {}
	switch cfg.Notify.Transport {
	case config.TransportMemory:
		return memqueue.New(cfg.Notify.MemoryCapacity), noop, nil

	case config.TransportSQS:
		if cfg.Notify.SQSQueueURL == "" {
			return nil, noop, fmt.Errorf("NOTIFY_SQS_QUEUE_URL is required for the sqs transport")
		}
		if err := sqsinfra.CheckFIFO(cfg.Notify.SQSQueueURL, cfg.Notify.SNSTopicARN); err != nil {
			return nil, noop, err
		}
		client, err := sqsinfra.NewClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		var opts []sqsinfra.Option
		if cfg.Notify.SNSTopicARN != "" {
			snsClient, err := snsinfra.NewClient(ctx, cfg)
			if err != nil {
				return nil, noop, err
			}
			opts = append(opts, sqsinfra.WithPublisher(snsinfra.NewPublisher(snsClient, cfg.Notify.SNSTopicARN)))
			slog.Info("sqs transport publishing through sns", "topic", cfg.Notify.SNSTopicARN)
		}
		return sqsinfra.NewQueue(client, cfg.Notify.SQSQueueURL, opts...), noop, nil

	case config.TransportRedis:
		rdb := redisqueue.NewClient(cfg)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			// Not fatal: Send and Drain degrade to false/empty until Redis is back.
			slog.Warn("redis unreachable at startup", "addr", cfg.Notify.RedisAddr, "err", err)
		}
		return redisqueue.NewQueue(rdb, cfg.Notify.RedisKey), func() { _ = rdb.Close() }, nil

	case config.TransportDynamo:
		client, err := dynamo.NewClient(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		// Creates the queue table if it doesn't exist.
		dynamo.Bootstrap(ctx, client, cfg.Notify.DynamoTable)
		return dynamo.NewQueue(client, cfg.Notify.DynamoTable, cfg.Notify.DynamoPartition, cfg.Notify.DynamoRetention), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown NOTIFY_TRANSPORT %q", cfg.Notify.Transport)
	}
}

// queueDepth exposes the backlog of transports that can count it. SQS and
// DynamoDB only offer approximate or paginated counts, so they report none.
func queueDepth(t notification.Transport) handler.QueueDepth {
	switch q := t.(type) {
	case *memqueue.Queue:
		return func(context.Context) (int64, error) { return int64(q.Len()), nil }
	case *redisqueue.Queue:
		return q.Len
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contoso-notify/internal/config"
	"github.com/contoso-notify/internal/poller"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.LoadWatch()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	board := poller.NewBoard()
	p := poller.New(poller.NewClient(cfg.APIURL, nil), board,
		poller.WithInterval(cfg.PollInterval),
		poller.OnCycle(func(b *poller.Board) {
			fmt.Fprintf(os.Stdout, "\n── %s ──\n%s\n", time.Now().Format(time.TimeOnly), poller.Render(b.Visible(), time.Now()))
		}),
	)

	log.Printf("Watching %s every %s", cfg.APIURL, cfg.PollInterval)
	if err := p.Run(ctx); err != nil {
		log.Fatalf("poller: %v", err)
	}
	log.Println("Stopped")
}

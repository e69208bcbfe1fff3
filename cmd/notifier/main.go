package main

import (
	"Polyclinic/internal/api/dto"
	"Polyclinic/internal/notify"
	"context"
	"flag"
	"fmt"
	log "log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
)

func defaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "notified.json"
	}
	return filepath.Join(home, ".polyclinic", "notified.json")
}

func describe(item dto.UnreadItem) string {
	switch item.Kind {
	case "letter":
		return fmt.Sprintf("Новый ответ главврача (обращение #%d)", item.ID)
	case "message":
		return fmt.Sprintf("Новое сообщение в переписке (обращение #%d)", item.ID)
	case "chat":
		return fmt.Sprintf("Новое сообщение в чате (#%d)", item.ID)
	default:
		return fmt.Sprintf("Новое уведомление (%s #%d)", item.Kind, item.ID)
	}
}

func main() {
	var (
		baseURL   = flag.String("url", "http://localhost:8080", "server base URL")
		token     = flag.String("token", "", "bearer token of the polling account")
		path      = flag.String("path", "/api/letters/unread", "unread summary path")
		stateFile = flag.String("state", defaultStatePath(), "notified-set state file")
		interval  = flag.Duration("interval", notify.DefaultInterval, "poll interval")
	)
	flag.Parse()

	if *token == "" {
		fmt.Fprintln(os.Stderr, "notifier: -token is required")
		os.Exit(2)
	}

	store := notify.NewStore(*stateFile, notify.DefaultMaxEntries)
	if err := store.Load(); err != nil {
		log.Error("failed to load notified state", "err", err)
		os.Exit(1)
	}

	client := resty.New().SetTimeout(10 * time.Second)
	poller := notify.NewPoller(client, store, *baseURL+*path, *token)
	poller.Interval = *interval
	poller.OnNotify = func(item dto.UnreadItem) {
		// Terminal bell plus a readable line.
		fmt.Printf("\a[%s] %s\n", time.Now().Format("15:04:05"), describe(item))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("notifier started", "url", *baseURL+*path, "interval", *interval)
	if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("notifier stopped with error", "err", err)
		os.Exit(1)
	}
}

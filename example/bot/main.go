package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tokmz/guilded"
	"github.com/tokmz/guilded/pkg/config"
	"github.com/tokmz/guilded/pkg/event"
	"github.com/tokmz/guilded/pkg/gateway"
	"github.com/tokmz/guilded/pkg/logger"
	"github.com/tokmz/guilded/pkg/status"
	"github.com/tokmz/guilded/pkg/structures"
	"github.com/tokmz/guilded/pkg/tracing"
	"github.com/tokmz/guilded/pkg/ws"
)

func main() {
	path := flag.String("config", "", "config file (yaml/json/toml), token may come from GUILDED_TOKEN")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *path); err != nil {
		log.Fatalf("bot exited: %v", err)
	}
}

func run(ctx context.Context, path string) error {
	var l logger.Logger
	opts := []config.Option{
		// 热更新只调整日志级别
		config.WithOnChange(func(s *config.Settings) {
			if lvl, err := logger.ParseLevel(s.Log.Level); err == nil && l != nil {
				l.SetLevel(lvl)
			}
		}),
	}
	if path != "" {
		opts = append(opts, config.WithConfigFile(path), config.WithAutoWatch(true))
	}
	cfg := config.New(opts...)
	if err := cfg.Load(); err != nil {
		return err
	}
	defer cfg.Close()

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	logCfg, err := settings.Log.LoggerConfig()
	if err != nil {
		return err
	}
	if l, err = logger.New(logCfg); err != nil {
		return err
	}
	defer func() { _ = l.Sync() }()

	tp, err := tracing.NewProvider(ctx, &settings.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(shutdownCtx)
	}()

	client, err := guilded.NewFromSettings(settings,
		guilded.WithLogger(l),
		guilded.WithMetrics(ws.NewPrometheusMetrics(nil, "guilded")),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	client.On(guilded.EventReady, func(e event.Event) {
		user := e.Data.(*structures.ClientUser)
		l.Info("logged in", zap.String("user_id", user.ID), zap.String("name", user.Name))
	})
	client.On(guilded.EventError, func(e event.Event) {
		if err, ok := e.Data.(error); ok {
			l.Error("client error", zap.Error(err))
		}
	})
	client.On(gateway.EventChatMessageCreate, func(e event.Event) {
		msg := e.Data.(*structures.ChatMessage)
		if msg.CreatedBy == client.SelfID() || !strings.HasPrefix(msg.Content, "!ping") {
			return
		}
		reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if _, err := client.CreateChannelMessage(reqCtx, msg.ChannelID, guilded.MessageCreateOptions{
			Content:         "pong",
			ReplyMessageIDs: []string{msg.ID},
		}); err != nil {
			l.Warn("failed to reply", zap.String("channel_id", msg.ChannelID), zap.Error(err))
		}
	})

	srv := status.New(
		status.WithAddr(settings.Status.Addr),
		status.WithLogger(l),
		status.WithTracing(settings.Tracing.Enabled),
		status.WithHealth(client.Healthy),
		status.WithStats(func() any { return client.Stats() }),
	)
	errChan := make(chan error, 1)
	go func() { errChan <- srv.Run(ctx) }()

	if err := client.Connect(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		l.Info("shutting down")
		if err := <-errChan; err != nil {
			l.Warn("status server stopped with error", zap.Error(err))
		}
		return nil
	case err := <-errChan:
		return err
	}
}

package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/synctube/server/internal/controller"
	"github.com/synctube/server/internal/repository/connection/inmemory"
	"github.com/synctube/server/internal/repository/room/redis"
	"github.com/synctube/server/internal/service/room"
	"github.com/synctube/server/pkg/ctxlogger"
	"github.com/synctube/server/pkg/redisclient"
	"github.com/synctube/server/pkg/youtube"
)

type AppConfig struct {
	Host                  string `json:"host"`
	Port                  int    `json:"port"`
	LogLevel              string `json:"log_level"`
	UsersLimit            int    `json:"users_limit"`
	AutoCreateOnJoin      bool   `json:"auto_create_on_join"`
	EmptyRoomTTLSeconds   int    `json:"empty_room_ttl_seconds"`
	SeekDriftThreshold    int    `json:"seek_drift_threshold"`
	PublishDriftThreshold int    `json:"publish_drift_threshold"`
	RedisHost             string `json:"redis_host"`
	RedisPort             int    `json:"redis_port"`
	RedisPassword         string `json:"-"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.UsersLimit < 1 {
		return fmt.Errorf("users limit must be greater than 0")
	}
	if cfg.SeekDriftThreshold < 1 {
		return fmt.Errorf("seek drift threshold must be greater than 0")
	}
	if cfg.PublishDriftThreshold < cfg.SeekDriftThreshold {
		return fmt.Errorf("publish drift threshold must not be below the seek drift threshold")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: logLevel,
		}),
	}
	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	roomRepo := redis.NewRepo(rc, logger, 24*14*time.Hour)
	connRepo := inmemory.NewRepo()
	metadata := youtube.NewMetadataClient(&http.Client{Timeout: 5 * time.Second})
	roomService := room.NewService(roomRepo, connRepo, metadata, logger, &room.Config{
		UsersLimit:            cfg.UsersLimit,
		AutoCreateOnJoin:      cfg.AutoCreateOnJoin,
		EmptyRoomTTL:          time.Duration(cfg.EmptyRoomTTLSeconds) * time.Second,
		SeekDriftThreshold:    cfg.SeekDriftThreshold,
		PublishDriftThreshold: cfg.PublishDriftThreshold,
	})
	controller := controller.NewController(roomService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}

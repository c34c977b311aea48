package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DedS3t/richup-server/app/controllers"
	"github.com/DedS3t/richup-server/pkg/configs"
	"github.com/DedS3t/richup-server/pkg/routes"
	"github.com/DedS3t/richup-server/platform/board"
	"github.com/DedS3t/richup-server/platform/cache"
	"github.com/DedS3t/richup-server/platform/database"
	"github.com/DedS3t/richup-server/platform/game"
	"github.com/DedS3t/richup-server/platform/logging"
	"github.com/DedS3t/richup-server/platform/relay"
	socket "github.com/DedS3t/richup-server/platform/sockets"
	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	directoryTTL    = time.Hour
)

func main() {
	cfg := configs.Load()
	logging.Init(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []relay.Option
	var history controllers.History

	if cfg.RedisURL != "" {
		pool := cache.CreateRedisPool(cfg.RedisURL)
		defer pool.Close()
		directory := cache.NewDirectory(pool, directoryTTL)
		if n, err := directory.Clear(ctx); err != nil {
			log.WithError(err).Warn("could not clear stale game directory")
		} else if n > 0 {
			log.WithField("games", n).Info("cleared stale game directory entries")
		}
		opts = append(opts, relay.WithDirectory(directory))
		log.WithField("redis", cfg.RedisURL).Info("game directory enabled")
	}

	if cfg.DBAddr != "" {
		db := database.PostgreSQLConnection(database.Options{
			Addr:     cfg.DBAddr,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
		})
		defer db.Close()
		archive, err := database.NewArchive(ctx, db)
		if err != nil {
			log.WithError(err).Warn("postgres unavailable, results will not be archived")
		} else {
			opts = append(opts, relay.WithArchive(archive))
			history = archive
		}
	}

	engine := game.NewEngine(board.Default(), nil)
	rel := relay.New(engine, relay.Config{
		GracePeriod:  cfg.GracePeriod,
		StartingCash: cfg.StartingCash,
		MaxPlayers:   cfg.MaxPlayers,
	}, opts...)
	defer rel.Close()

	server, err := socket.CreateSocketIOServer(rel)
	if err != nil {
		log.WithError(err).Fatal("create socket.io server")
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
	})
	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	mux.Handle("/ws", socket.NewWebsocketHandler(rel, cfg.AllowedOrigins))
	socketServer := &http.Server{Addr: cfg.SocketAddr, Handler: c.Handler(mux)}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          controllers.ErrorHandler,
	})
	app.Use(fibercors.New())
	routes.GameRoutes(app, controllers.NewGameController(rel, history))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.Serve(); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", cfg.SocketAddr).Info("socket server listening")
		if err := socketServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.WithField("addr", cfg.RestAddr).Info("rest server listening")
		return app.Listen(cfg.RestAddr)
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		errs = append(errs, socketServer.Shutdown(sctx))
		errs = append(errs, app.ShutdownWithContext(sctx))
		errs = append(errs, server.Close())
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server stopped")
	}
}

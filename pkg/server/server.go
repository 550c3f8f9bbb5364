// Package server exposes the inventory service over HTTP. It parses and
// forwards; all bookkeeping lives in the layers below.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"salvagedb/pkg/auth"
	"salvagedb/pkg/inventory"
	"salvagedb/pkg/log"
	"salvagedb/pkg/models"
)

const shutdownTimeout = 10

// Inventory is the service surface the handlers call into.
type Inventory interface {
	Submit(ctx context.Context, sub inventory.Submission) (*inventory.SubmitResult, error)
	UpdateItem(ctx context.Context, ownerID, uid string, partial map[string]any) error
	DeleteItem(ctx context.Context, ownerID, uid string) error
	ListAll(ctx context.Context, columnOrder []string) (*models.Table, error)
}

type Server struct {
	echo    *echo.Echo
	svc     Inventory
	auth    *auth.Authenticator
	version string
}

func New(svc Inventory, authenticator *auth.Authenticator, version string) *Server {
	return &Server{
		echo:    echo.New(),
		svc:     svc,
		auth:    authenticator,
		version: version,
	}
}

func (srv *Server) Start(addr string) error {
	srv.setupRoutes()

	// Start server in a goroutine
	go func() {
		log.Info().
			Str("addr", addr).
			Str("version", srv.version).
			Msg("Starting inventory server")

		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return srv.Shutdown()
}

func (srv *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout*time.Second)
	defer cancel()

	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (srv *Server) setupRoutes() {
	srv.echo.HideBanner = true
	srv.echo.HidePort = true
	srv.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	srv.echo.Use(middleware.Recover())

	srv.echo.GET("/healthz", srv.health)

	api := srv.echo.Group("", srv.requireIdentity)
	api.POST("/items", srv.submitItem)
	api.PATCH("/items/:uid", srv.updateItem)
	api.DELETE("/items/:uid", srv.deleteItem)
	api.GET("/items", srv.listItems)
	api.GET("/items/export.csv", srv.exportCSV)
}

func (srv *Server) health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": srv.version,
	})
}

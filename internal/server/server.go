// Package server is the sample backend: it serves the language catalog, the
// sample records and their audio files over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/dgnsrekt/voxdemo/internal/store"
)

// Config configures a Server.
type Config struct {
	Host           string
	Port           int
	StaticDir      string
	AllowedOrigins []string
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server wires the HTTP routes to a store and a catalog.
type Server struct {
	cfg     Config
	app     *fiber.App
	store   store.Store
	catalog *Catalog
	metrics *Metrics
}

// New builds the fiber app. metrics may be nil.
func New(cfg Config, st store.Store, catalog *Catalog, metrics *Metrics) *Server {
	s := &Server{
		cfg:     cfg,
		store:   st,
		catalog: catalog,
		metrics: metrics,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "voxdemo",
		DisableStartupMessage: true,
		UnescapePath:          true,
		ErrorHandler:          errorHandler,
	})

	if metrics != nil {
		s.app.Use(metrics.Middleware())
	}
	if len(cfg.AllowedOrigins) > 0 {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
			AllowCredentials: !contains(cfg.AllowedOrigins, "*"),
			AllowMethods:     "GET,POST,DELETE,OPTIONS",
			AllowHeaders:     "*",
		}))
	}

	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", s.cfg.Addr(), "static", s.cfg.StaticDir)
		errc <- s.app.Listen(s.cfg.Addr())
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		return s.app.Shutdown()
	}
}

// detail is the error body shape clients expect.
type detail struct {
	Detail string `json:"detail"`
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Error("request failed", "method", c.Method(), "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(detail{Detail: err.Error()})
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

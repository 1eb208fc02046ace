package server

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/dgnsrekt/voxdemo/internal/store"
)

func (s *Server) routes() {
	s.app.Get("/", s.root)
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	if s.metrics != nil {
		s.app.Get("/metrics", s.metrics.Handler())
	}

	api := s.app.Group("/api")
	api.Get("/languages", s.languages)
	api.Get("/audio", s.listAudio)
	api.Post("/audio", s.createAudio)
	api.Get("/audio/:language", s.audioByLanguage)
	api.Delete("/audio/:id", s.deleteAudio)

	if s.cfg.StaticDir != "" {
		s.app.Static("/static", s.cfg.StaticDir)
	}
}

func (s *Server) root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "voxdemo sample API is running"})
}

func (s *Server) languages(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Languages())
}

func (s *Server) listAudio(c *fiber.Ctx) error {
	records, err := s.store.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(records)
}

func (s *Server) audioByLanguage(c *fiber.Ctx) error {
	lang := c.Params("language")
	r, err := s.store.FindByLanguage(c.UserContext(), lang)
	if errors.Is(err, store.ErrNotFound) {
		if s.metrics != nil {
			s.metrics.sampleMissed()
		}
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("Audio for language '%s' not found", lang))
	}
	if err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.sampleServed(r.Language)
	}
	return c.JSON(r)
}

func (s *Server) createAudio(c *fiber.Ctx) error {
	var in store.Record
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "invalid body: "+err.Error())
	}
	in.ID = ""

	r, err := s.store.Create(c.UserContext(), in)
	if errors.Is(err, store.ErrInvalidRecord) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	return c.JSON(r)
}

func (s *Server) deleteAudio(c *fiber.Ctx) error {
	err := s.store.Delete(c.UserContext(), c.Params("id"))
	switch {
	case errors.Is(err, store.ErrInvalidID):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid audio ID")
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Audio file not found")
	case err != nil:
		return err
	}
	return c.JSON(fiber.Map{"message": "Audio file deleted successfully"})
}

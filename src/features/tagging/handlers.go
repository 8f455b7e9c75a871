package tagging

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/contre95/id3shim/src/id3"
	"github.com/gofiber/fiber/v2"
)

// Handler serves the tagging API.
type Handler struct {
	service *Service
}

// NewHandler creates a new tagging handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type saveRequest struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
}

type rewriteRequest struct {
	Path    string `json:"path"`
	Frame   string `json:"frame"`
	Charset string `json:"charset"`
	Version int    `json:"version"`
}

// GetTags returns the tag of the file named by the path query parameter.
func (h *Handler) GetTags(c *fiber.Ctx) error {
	path, err := h.confine(c.Query("path"))
	if err != nil {
		return err
	}
	info, err := h.service.Inspect(c.UserContext(), path)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(info)
}

// SaveTags rewrites a tag with the requested or configured version.
func (h *Handler) SaveTags(c *fiber.Ctx) error {
	var req saveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	path, err := h.confine(req.Path)
	if err != nil {
		return err
	}

	var version id3.Version
	if req.Version == 0 {
		version, err = h.service.Version()
	} else {
		version, err = id3.ParseVersion(req.Version)
	}
	if err != nil {
		return toHTTPError(err)
	}

	info, err := h.service.Normalize(c.UserContext(), path, version)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(info)
}

// RewriteFrame re-decodes one text frame.
func (h *Handler) RewriteFrame(c *fiber.Ctx) error {
	var req rewriteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	path, err := h.confine(req.Path)
	if err != nil {
		return err
	}
	text, err := h.service.Rewrite(c.UserContext(), path, RewriteOptions{
		Frame:   req.Frame,
		Charset: req.Charset,
		Version: req.Version,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(fiber.Map{"path": path, "text": text})
}

// SetCover embeds the uploaded image as front cover.
func (h *Handler) SetCover(c *fiber.Ctx) error {
	path, err := h.confine(c.FormValue("path"))
	if err != nil {
		return err
	}
	header, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "image is required")
	}
	file, err := header.Open()
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}

	if err := h.service.SetCover(c.UserContext(), path, data); err != nil {
		return toHTTPError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetHistory lists the journaled changes of a file.
func (h *Handler) GetHistory(c *fiber.Ctx) error {
	path, err := h.confine(c.Query("path"))
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), path)
	if err != nil {
		return toHTTPError(err)
	}
	if entries == nil {
		entries = []JournalEntry{}
	}
	return c.JSON(entries)
}

// confine checks a requested path and keeps it inside the served root.
func (h *Handler) confine(path string) (string, error) {
	if path == "" {
		return "", fiber.NewError(fiber.StatusBadRequest, "path is required")
	}
	confined, err := h.service.Confine(path)
	if err != nil {
		return "", toHTTPError(err)
	}
	return confined, nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, ErrOutsideRoot):
		return fiber.NewError(fiber.StatusForbidden, err.Error())
	case errors.Is(err, fs.ErrNotExist):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, id3.ErrDecode),
		errors.Is(err, id3.ErrUnknownCharset),
		errors.Is(err, id3.ErrInvalidVersion),
		errors.Is(err, id3.ErrNoFrame),
		errors.Is(err, id3.ErrNotTextFrame),
		errors.Is(err, ErrUnsupportedFile),
		errors.Is(err, ErrInvalidFrameID),
		errors.Is(err, ErrInvalidImage):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	slog.Error("Tagging request failed", "error", err)
	return err
}

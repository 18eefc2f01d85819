package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/Luiggi-Git/carocha-functions/internal/domain"
	"github.com/Luiggi-Git/carocha-functions/internal/gateway"
	"github.com/Luiggi-Git/carocha-functions/internal/grant"
	"github.com/Luiggi-Git/carocha-functions/internal/logging"
)

// Gateway is the subset of gateway.Service the handlers use.
type Gateway interface {
	IssueUploadGrant(ctx context.Context, filename string) (gateway.IssuedGrant, error)
	IssueReadGrant(ctx context.Context, name string) (gateway.IssuedGrant, error)
	ListWithReadGrants(ctx context.Context) (gateway.Listing, error)
	DeleteObject(ctx context.Context, name string) (gateway.DeleteResult, error)
}

// Handler handles HTTP requests for grant and object operations
type Handler struct {
	gw Gateway
}

// NewHandler creates a new handler
func NewHandler(gw Gateway) *Handler {
	return &Handler{gw: gw}
}

type uploadGrantResponse struct {
	UploadURL string    `json:"uploadUrl"`
	ExpiresOn time.Time `json:"expiresOn"`
}

type readGrantResponse struct {
	URL       string    `json:"url"`
	ExpiresOn time.Time `json:"expiresOn"`
}

type listItem struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type listResponse struct {
	Items     []listItem `json:"items"`
	ExpiresOn time.Time  `json:"expiresOn"`
}

type deleteResponse struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
}

// GetUploadSas issues a create+write URL for ?filename=.
func (h *Handler) GetUploadSas(c echo.Context) error {
	filename := c.QueryParam("filename")
	if filename == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing filename"})
	}

	g, err := h.gw.IssueUploadGrant(c.Request().Context(), filename)
	if err != nil {
		return writeError(c, "issue upload grant", err)
	}

	noStore(c)
	logging.FromContext(c).Info("upload grant issued", "filename", filename, "expires_on", g.ExpiresOn)
	return c.JSON(http.StatusOK, uploadGrantResponse{
		UploadURL: g.URL.String(),
		ExpiresOn: g.ExpiresOn,
	})
}

// GetReadSas issues a read-only URL for ?name=.
func (h *Handler) GetReadSas(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing name"})
	}

	g, err := h.gw.IssueReadGrant(c.Request().Context(), name)
	if err != nil {
		return writeError(c, "issue read grant", err)
	}

	noStore(c)
	return c.JSON(http.StatusOK, readGrantResponse{
		URL:       g.URL.String(),
		ExpiresOn: g.ExpiresOn,
	})
}

// ListPhotos lists the container with a read URL per object.
func (h *Handler) ListPhotos(c echo.Context) error {
	listing, err := h.gw.ListWithReadGrants(c.Request().Context())
	if err != nil {
		return writeError(c, "list objects", err)
	}

	items := lo.Map(listing.Items, func(g grant.ReadGrant, _ int) listItem {
		return listItem{Name: g.Name, Size: g.Size, URL: g.URL.String()}
	})

	noStore(c)
	logging.FromContext(c).Debug("listing served", "count", len(items))
	return c.JSON(http.StatusOK, listResponse{Items: items, ExpiresOn: listing.ExpiresOn})
}

// DeletePhoto deletes ?name= after checking that it exists.
func (h *Handler) DeletePhoto(c echo.Context) error {
	res, err := h.gw.DeleteObject(c.Request().Context(), c.QueryParam("name"))
	if err != nil {
		return writeError(c, "delete object", err)
	}

	noStore(c)
	logging.FromContext(c).Info("object deleted", "name", res.Name)
	return c.JSON(http.StatusOK, deleteResponse{OK: true, Name: res.Name})
}

func noStore(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
	c.Response().Header().Set("Pragma", "no-cache")
	c.Response().Header().Set("Expires", "0")
}

// writeError maps a domain error onto the response. Collaborator failures
// carry the upstream message as detail; config errors carry only their own
// message, which never includes key material.
func writeError(c echo.Context, op string, err error) error {
	logger := logging.FromContext(c)

	var de *domain.DomainError
	if !errors.As(err, &de) {
		logger.Error("Unexpected error", "op", op, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":  "internal error",
			"detail": err.Error(),
		})
	}

	switch de.Code {
	case domain.ErrCodeInvalidInput:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": de.Message})
	case domain.ErrCodeNotFound:
		name, _ := de.Details["name"].(string)
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "object not found",
			"name":  name,
		})
	case domain.ErrCodeConfig:
		logger.Error("Configuration error", "op", op, "error", de.Message)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":  "internal error",
			"detail": de.Message,
		})
	default:
		logger.Error("Collaborator failed", "op", op, "error", domain.Detail(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error":  "internal error",
			"detail": domain.Detail(err),
		})
	}
}

package api

import (
	"github.com/labstack/echo/v4"

	"github.com/Luiggi-Git/carocha-functions/internal/observability"
)

// RegisterRoutes registers all gateway routes. Delete is DELETE only, so a
// GET on /api/deletePhoto is answered with 405.
func RegisterRoutes(e *echo.Echo, gw Gateway, health *observability.HealthHandler) {
	handler := NewHandler(gw)

	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)

	api := e.Group("/api")
	api.GET("/getUploadSas", handler.GetUploadSas)
	api.GET("/getReadSas", handler.GetReadSas)
	api.GET("/listPhotos", handler.ListPhotos)
	api.DELETE("/deletePhoto", handler.DeletePhoto)
}

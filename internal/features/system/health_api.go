package system

import (
	"go-expense/internal/config"

	"github.com/gofiber/fiber/v2"
)

type HealthApi struct {
	config *config.Config
}

func NewHealthApi(cfg *config.Config) *HealthApi {
	return &HealthApi{config: cfg}
}

// Setup registers the unauthenticated health probe
func (h *HealthApi) Setup(app *fiber.App) {
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"backend": h.config.StorageBackend,
		})
	})
}

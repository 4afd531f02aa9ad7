// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"gorm.io/gorm"

	"guide-validator/internal/infra/postgres"
)

// NewHealthCheck creates a Fiber healthcheck middleware with Kubernetes-style
// endpoints: GET /livez (process alive) and GET /readyz (database reachable).
// Register it before other middleware so probes answer even under load.
func NewHealthCheck(db *gorm.DB) fiber.Handler {
	return healthcheck.New(healthcheck.Config{
		LivenessEndpoint: "/livez",
		LivenessProbe: func(_ *fiber.Ctx) bool {
			return true
		},

		ReadinessEndpoint: "/readyz",
		ReadinessProbe: func(_ *fiber.Ctx) bool {
			return db != nil && postgres.HealthCheck(db) == nil
		},
	})
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jotbook/jotbook/internal/auth"
)

// RegisterUserRoutes wires the signup and login endpoints. The rate limiter
// guards only the code-issuing routes.
func RegisterUserRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	users := r.Group("/users")
	users.Post("/create", rateLimiter, h.RequestSignup)
	users.Post("/verify-otp", h.VerifySignup)
	users.Post("/request-login-otp", rateLimiter, h.RequestLogin)
	users.Post("/verify-login-otp", h.VerifyLogin)
	// Backward-compatible login without a code; new clients must not use it.
	users.Post("/login", h.LegacyLogin)
}

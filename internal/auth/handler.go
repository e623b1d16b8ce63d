package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jotbook/jotbook/internal/account"
	"github.com/jotbook/jotbook/internal/apperr"
	"github.com/jotbook/jotbook/internal/validate"
)

// Handler exposes the signup and login HTTP endpoints.
type Handler struct {
	svc       *Service
	exposeOTP bool
}

// NewHandler builds an auth HTTP handler. exposeOTP echoes plaintext codes in
// responses; it exists for development against throwaway mailboxes only.
func NewHandler(svc *Service, exposeOTP bool) *Handler {
	return &Handler{svc: svc, exposeOTP: exposeOTP}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Birthday string `json:"birthday" validate:"required"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required"`
}

type emailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type userSummary struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Birthday  string `json:"birthday"`
	LastLogin string `json:"lastLogin,omitempty"`
}

func pendingSummary(ch Challenge) userSummary {
	return userSummary{Name: ch.Name, Email: ch.Email, Birthday: ch.Birthday.Format("2006-01-02")}
}

func accountSummary(acct account.Account, withLastLogin bool) userSummary {
	s := userSummary{
		ID:       acct.ID,
		Name:     acct.Name,
		Email:    acct.Email,
		Birthday: acct.Birthday.Format("2006-01-02"),
	}
	if withLastLogin {
		s.LastLogin = acct.LastLogin.Format(time.RFC3339)
	}
	return s
}

// RequestSignup issues a signup code for a new email.
func (h *Handler) RequestSignup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Validation("All fields are required")
	}

	ch, err := h.svc.RequestSignup(c.UserContext(), req.Name, req.Email, req.Birthday)
	if err != nil {
		return err
	}

	message := "User registered successfully and OTP sent to email"
	if !ch.Dispatched {
		message = "User registered successfully, but email sending failed. Check server logs for details."
	}
	body := fiber.Map{
		"success": true,
		"message": message,
		"user":    pendingSummary(ch),
	}
	if h.exposeOTP {
		body["otp"] = ch.Code
	}
	return c.Status(http.StatusCreated).JSON(body)
}

// VerifySignup confirms a signup code and returns the new verified account.
func (h *Handler) VerifySignup(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Validation("Email and OTP are required")
	}

	acct, err := h.svc.VerifySignup(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "OTP verified successfully. User registered and can now login.",
		"user":    accountSummary(acct, false),
	})
}

// RequestLogin issues a login code for a verified account.
func (h *Handler) RequestLogin(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Validation("Email is required")
	}

	ch, err := h.svc.RequestLogin(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	status := http.StatusOK
	message := "Login OTP sent to your email successfully"
	if !ch.Dispatched {
		// Matches the original API: generation succeeded, delivery did not.
		status = http.StatusCreated
		message = "Login OTP generated but email sending failed. Check server logs for details."
	}
	body := fiber.Map{
		"success": true,
		"message": message,
		"otpSent": true,
	}
	if h.exposeOTP {
		body["otp"] = ch.Code
	}
	return c.Status(status).JSON(body)
}

// VerifyLogin confirms a login code and returns the account with lastLogin set.
func (h *Handler) VerifyLogin(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Validation("Email and OTP are required")
	}

	acct, err := h.svc.VerifyLogin(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    accountSummary(acct, true),
	})
}

// LegacyLogin authenticates by email alone. Kept for backward compatibility.
func (h *Handler) LegacyLogin(c *fiber.Ctx) error {
	var req emailRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := validate.Struct(&req); err != nil {
		return apperr.Validation("Email is required")
	}

	acct, err := h.svc.LegacyLogin(c.UserContext(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"user":    accountSummary(acct, true),
	})
}

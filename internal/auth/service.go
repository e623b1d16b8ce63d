package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jotbook/jotbook/internal/account"
	"github.com/jotbook/jotbook/internal/apperr"
	"github.com/jotbook/jotbook/internal/mailer"
	"github.com/jotbook/jotbook/internal/otp"
)

const birthdayLayout = "2006-01-02"

// Service orchestrates the passwordless signup and login cycles: it issues
// pending credentials, dispatches codes, and promotes pending signups to
// verified accounts.
type Service struct {
	accounts   account.Repository
	pending    otp.Store
	dispatcher mailer.Dispatcher
	ttl        time.Duration
	logger     *slog.Logger
}

// NewService builds the auth flow service.
func NewService(accounts account.Repository, pending otp.Store, dispatcher mailer.Dispatcher, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{accounts: accounts, pending: pending, dispatcher: dispatcher, ttl: ttl, logger: logger}
}

// Challenge describes an issued one-time code. Code is plaintext and exists
// only in this window; the store keeps a hash.
type Challenge struct {
	Name       string
	Email      string
	Birthday   time.Time
	Code       string
	Dispatched bool
}

// RequestSignup registers a pending identity and issues a signup code.
// An in-flight pending signup for the email is never overwritten; the caller
// must verify it or wait for it to expire.
func (s *Service) RequestSignup(ctx context.Context, name, email, birthday string) (Challenge, error) {
	if name == "" || email == "" || birthday == "" {
		return Challenge{}, apperr.Validation("All fields are required")
	}
	born, err := time.Parse(birthdayLayout, birthday)
	if err != nil {
		return Challenge{}, apperr.Validation("Invalid birthday format, expected YYYY-MM-DD")
	}

	if _, err := s.accounts.FindByEmail(ctx, email); err == nil {
		return Challenge{}, apperr.Conflict("User with this email is already registered and verified")
	} else if !errors.Is(err, account.ErrNotFound) {
		return Challenge{}, err
	}

	if _, err := s.pending.Get(ctx, email); err == nil {
		return Challenge{}, apperr.Conflict("User with this email already exists. Please verify your OTP or wait for it to expire.")
	} else if !errors.Is(err, otp.ErrNoCredential) {
		return Challenge{}, err
	}

	return s.issue(ctx, name, email, born, false)
}

// VerifySignup confirms a signup code and promotes the pending identity to a
// verified account. Login-flagged codes are rejected: a login challenge only
// ever exists for an already-verified email.
func (s *Service) VerifySignup(ctx context.Context, email, code string) (account.Account, error) {
	if err := checkCodeInput(email, code); err != nil {
		return account.Account{}, err
	}

	cred, err := s.pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, otp.ErrNoCredential) {
			return account.Account{}, apperr.InvalidCredential("Invalid OTP or email")
		}
		return account.Account{}, err
	}
	if cred.Login || !cred.Match(code) {
		return account.Account{}, apperr.InvalidCredential("Invalid OTP or email")
	}

	now := time.Now().UTC()
	acct := account.Account{
		ID:        uuid.NewString(),
		Name:      cred.Name,
		Email:     cred.Email,
		Birthday:  cred.Birthday,
		CreatedAt: now,
		LastLogin: now,
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return account.Account{}, apperr.Conflict("User with this email is already registered and verified")
		}
		return account.Account{}, err
	}

	if err := s.pending.Delete(ctx, email); err != nil {
		s.logger.Warn("delete pending credential", "email", email, "error", err)
	}

	return acct, nil
}

// RequestLogin issues a login code for a verified account, replacing any
// outstanding credential for the email.
func (s *Service) RequestLogin(ctx context.Context, email string) (Challenge, error) {
	if email == "" {
		return Challenge{}, apperr.Validation("Email is required")
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return Challenge{}, apperr.NotFound("User not found. Please register first.")
		}
		return Challenge{}, err
	}

	// A fresh login request supersedes any outstanding code for the email.
	if err := s.pending.Delete(ctx, email); err != nil {
		return Challenge{}, err
	}

	return s.issue(ctx, acct.Name, acct.Email, acct.Birthday, true)
}

// VerifyLogin confirms a login code and stamps the account's last login.
func (s *Service) VerifyLogin(ctx context.Context, email, code string) (account.Account, error) {
	if err := checkCodeInput(email, code); err != nil {
		return account.Account{}, err
	}

	cred, err := s.pending.Get(ctx, email)
	if err != nil {
		if errors.Is(err, otp.ErrNoCredential) {
			return account.Account{}, apperr.InvalidCredential("Invalid OTP or email")
		}
		return account.Account{}, err
	}
	if !cred.Login || !cred.Match(code) {
		return account.Account{}, apperr.InvalidCredential("Invalid OTP or email")
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, apperr.NotFound("User not found")
		}
		return account.Account{}, err
	}

	if err := s.pending.Delete(ctx, email); err != nil {
		s.logger.Warn("delete pending credential", "email", email, "error", err)
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, acct.ID, now); err != nil {
		return account.Account{}, err
	}
	acct.LastLogin = now

	return acct, nil
}

// LegacyLogin authenticates by email alone, with no credential check. Kept
// for backward compatibility; new clients must use the OTP login cycle.
func (s *Service) LegacyLogin(ctx context.Context, email string) (account.Account, error) {
	if email == "" {
		return account.Account{}, apperr.Validation("Email is required")
	}

	acct, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return account.Account{}, apperr.NotFound("User not found. Please register first.")
		}
		return account.Account{}, err
	}

	now := time.Now().UTC()
	if err := s.accounts.UpdateLastLogin(ctx, acct.ID, now); err != nil {
		return account.Account{}, err
	}
	acct.LastLogin = now

	return acct, nil
}

// issue generates a code, stores the pending credential and attempts dispatch.
// The credential write is committed before dispatch and is not rolled back
// when delivery fails; the challenge reports the softer outcome instead.
func (s *Service) issue(ctx context.Context, name, email string, born time.Time, login bool) (Challenge, error) {
	code, err := otp.GenerateCode()
	if err != nil {
		return Challenge{}, err
	}
	hash, err := otp.HashCode(code)
	if err != nil {
		return Challenge{}, err
	}

	now := time.Now().UTC()
	cred := otp.PendingCredential{
		Name:      name,
		Email:     email,
		CodeHash:  hash,
		Birthday:  born,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		Login:     login,
	}
	if err := s.pending.Put(ctx, cred, s.ttl); err != nil {
		return Challenge{}, err
	}

	dispatched := true
	if err := s.dispatcher.Send(ctx, email, code, name); err != nil {
		dispatched = false
		s.logger.Warn("otp dispatch failed", "email", email, "error", err)
	}

	return Challenge{Name: name, Email: email, Birthday: born, Code: code, Dispatched: dispatched}, nil
}

func checkCodeInput(email, code string) error {
	if email == "" || code == "" {
		return apperr.Validation("Email and OTP are required")
	}
	if _, err := strconv.Atoi(code); err != nil {
		return apperr.Validation("Invalid OTP format")
	}
	return nil
}

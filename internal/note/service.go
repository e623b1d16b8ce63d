package note

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jotbook/jotbook/internal/account"
	"github.com/jotbook/jotbook/internal/apperr"
)

// Service exposes note operations scoped to an owning verified account.
type Service struct {
	repo     Repository
	accounts account.Repository
}

// NewService builds a note service.
func NewService(repo Repository, accounts account.Repository) *Service {
	return &Service{repo: repo, accounts: accounts}
}

// CreateInput captures data required to create a note.
type CreateInput struct {
	Title     string
	Content   string
	OwnerID   string
	Tags      []string
	Important bool
	Color     string
}

// Create inserts a note for an existing owner, applying defaults for omitted
// optional fields.
func (s *Service) Create(ctx context.Context, input CreateInput) (Note, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" || input.Content == "" || input.OwnerID == "" {
		return Note{}, apperr.Validation("Title, content, and userId are required")
	}
	if err := s.requireOwner(ctx, input.OwnerID); err != nil {
		return Note{}, err
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	color := input.Color
	if color == "" {
		color = defaultColor
	}

	now := time.Now().UTC()
	n := Note{
		ID:        uuid.NewString(),
		OwnerID:   input.OwnerID,
		Title:     title,
		Content:   input.Content,
		Tags:      tags,
		Important: input.Important,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// ListForOwner returns an owner's notes, filtered and sorted.
func (s *Service) ListForOwner(ctx context.Context, ownerID string, f Filter, srt Sort) ([]Note, error) {
	if ownerID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, ownerID, f, srt)
}

// GetByID returns a note with its owner resolved to name and email.
func (s *Service) GetByID(ctx context.Context, noteID string) (Note, Owner, error) {
	if noteID == "" {
		return Note{}, Owner{}, apperr.Validation("Note ID is required")
	}
	n, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Note{}, Owner{}, apperr.NotFound("Note not found")
		}
		return Note{}, Owner{}, err
	}

	owner := Owner{}
	acct, err := s.accounts.FindByID(ctx, n.OwnerID)
	if err == nil {
		owner = Owner{Name: acct.Name, Email: acct.Email}
	} else if !errors.Is(err, account.ErrNotFound) {
		return Note{}, Owner{}, err
	}
	return n, owner, nil
}

// Update applies only the fields present in the patch and refreshes UpdatedAt.
// Presence, not truthiness: an empty string or false still overwrites.
func (s *Service) Update(ctx context.Context, noteID string, patch UpdateInput) (Note, error) {
	if noteID == "" {
		return Note{}, apperr.Validation("Note ID is required")
	}
	n, err := s.repo.FindByID(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Note{}, apperr.NotFound("Note not found")
		}
		return Note{}, err
	}

	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Tags != nil {
		n.Tags = *patch.Tags
		if n.Tags == nil {
			n.Tags = []string{}
		}
	}
	if patch.Important != nil {
		n.Important = *patch.Important
	}
	if patch.Color != nil {
		n.Color = *patch.Color
	}
	n.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, n); err != nil {
		if errors.Is(err, ErrNotFound) {
			return Note{}, apperr.NotFound("Note not found")
		}
		return Note{}, err
	}
	return n, nil
}

// Delete removes a note and returns its final snapshot.
func (s *Service) Delete(ctx context.Context, noteID string) (Note, error) {
	if noteID == "" {
		return Note{}, apperr.Validation("Note ID is required")
	}
	n, err := s.repo.Delete(ctx, noteID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Note{}, apperr.NotFound("Note not found")
		}
		return Note{}, err
	}
	return n, nil
}

// Search matches an owner's notes by query and/or tag, newest updates first.
// Both clauses must hold when both are supplied.
func (s *Service) Search(ctx context.Context, ownerID, query, tag string) ([]Note, error) {
	if ownerID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	if query == "" && tag == "" {
		return nil, apperr.Validation("Search query or tag is required")
	}
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.Search(ctx, ownerID, query, tag)
}

// ListTags returns the distinct non-empty tags across an owner's notes.
func (s *Service) ListTags(ctx context.Context, ownerID string) ([]string, error) {
	if ownerID == "" {
		return nil, apperr.Validation("User ID is required")
	}
	if err := s.requireOwner(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.repo.DistinctTags(ctx, ownerID)
}

func (s *Service) requireOwner(ctx context.Context, ownerID string) error {
	if _, err := s.accounts.FindByID(ctx, ownerID); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return apperr.NotFound("User not found")
		}
		return err
	}
	return nil
}

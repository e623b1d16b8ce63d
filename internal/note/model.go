package note

import (
	"time"

	"github.com/jotbook/jotbook/internal/apperr"
)

const defaultColor = "#ffffff"

// Note is a single note owned by exactly one verified account.
type Note struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	Tags      []string
	Important bool
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Owner carries the resolved identity of a note's owning account.
type Owner struct {
	Name  string
	Email string
}

// SortField is the closed set of note fields the API can sort by. Arbitrary
// field names are rejected rather than passed through to the store.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortTitle     SortField = "title"
)

// ParseSortField validates a sortBy query value. Empty means the default,
// updatedAt.
func ParseSortField(s string) (SortField, error) {
	switch SortField(s) {
	case "":
		return SortUpdatedAt, nil
	case SortCreatedAt, SortUpdatedAt, SortTitle:
		return SortField(s), nil
	}
	return "", apperr.Validationf("Cannot sort by %q", s)
}

// Sort describes list ordering. The API treats "asc" as ascending and any
// other direction value as descending.
type Sort struct {
	Field     SortField
	Ascending bool
}

// DefaultSort is updatedAt descending.
func DefaultSort() Sort {
	return Sort{Field: SortUpdatedAt, Ascending: false}
}

// Filter narrows a listing. Zero values mean no filtering.
type Filter struct {
	Tag       string
	Important bool
}

// UpdateInput is a partial note patch. Nil fields are left untouched; present
// fields overwrite even when zero-valued.
type UpdateInput struct {
	Title     *string
	Content   *string
	Tags      *[]string
	Important *bool
	Color     *string
}

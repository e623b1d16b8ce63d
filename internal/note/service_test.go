package note

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jotbook/jotbook/internal/account"
	"github.com/jotbook/jotbook/internal/apperr"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	accounts := account.NewMemoryRepository()
	acct := account.Account{
		ID:        uuid.NewString(),
		Name:      "A",
		Email:     "a@x.com",
		Birthday:  time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Now().UTC(),
		LastLogin: time.Now().UTC(),
	}
	require.NoError(t, accounts.Create(context.Background(), acct))
	return NewService(NewMemoryRepository(), accounts), acct.ID
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "T", Content: "C", OwnerID: ownerID})
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, []string{}, n.Tags)
	assert.Equal(t, "#ffffff", n.Color)
	assert.False(t, n.Important)
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "   ", Content: "C", OwnerID: ownerID})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = svc.Create(ctx, CreateInput{Title: "T", Content: "C", OwnerID: uuid.NewString()})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateAppliesOnlySuppliedFields(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{
		Title:     "Original",
		Content:   "Body",
		OwnerID:   ownerID,
		Tags:      []string{"work"},
		Important: true,
		Color:     "#ff0000",
	})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	content := "Rewritten"
	updated, err := svc.Update(ctx, n.ID, UpdateInput{Content: &content})
	require.NoError(t, err)

	assert.Equal(t, "Original", updated.Title)
	assert.Equal(t, "Rewritten", updated.Content)
	assert.Equal(t, []string{"work"}, updated.Tags)
	assert.True(t, updated.Important)
	assert.Equal(t, "#ff0000", updated.Color)
	assert.True(t, updated.UpdatedAt.After(n.UpdatedAt))
}

func TestUpdateOverwritesWithZeroValues(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "T", Content: "C", OwnerID: ownerID, Important: true})
	require.NoError(t, err)

	// Presence, not truthiness: explicit false and empty string overwrite.
	important := false
	content := ""
	updated, err := svc.Update(ctx, n.ID, UpdateInput{Important: &important, Content: &content})
	require.NoError(t, err)

	assert.False(t, updated.Important)
	assert.Equal(t, "", updated.Content)
	assert.Equal(t, "T", updated.Title)
}

func TestUpdateUnknownNote(t *testing.T) {
	svc, _ := newTestService(t)

	title := "X"
	_, err := svc.Update(context.Background(), uuid.NewString(), UpdateInput{Title: &title})
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestListForOwnerImportantFilterAndOrder(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateInput{Title: "first", Content: "c", OwnerID: ownerID, Important: true})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	_, err = svc.Create(ctx, CreateInput{Title: "second", Content: "c", OwnerID: ownerID})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	third, err := svc.Create(ctx, CreateInput{Title: "third", Content: "c", OwnerID: ownerID, Important: true})
	require.NoError(t, err)

	notes, err := svc.ListForOwner(ctx, ownerID, Filter{Important: true}, DefaultSort())
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, third.ID, notes[0].ID)
	assert.Equal(t, first.ID, notes[1].ID)
}

func TestListForOwnerSortByTitleAscending(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"banana", "apple", "cherry"} {
		_, err := svc.Create(ctx, CreateInput{Title: title, Content: "c", OwnerID: ownerID})
		require.NoError(t, err)
	}

	notes, err := svc.ListForOwner(ctx, ownerID, Filter{}, Sort{Field: SortTitle, Ascending: true})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, "apple", notes[0].Title)
	assert.Equal(t, "banana", notes[1].Title)
	assert.Equal(t, "cherry", notes[2].Title)
}

func TestListForOwnerUnknownOwner(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ListForOwner(context.Background(), uuid.NewString(), Filter{}, DefaultSort())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestSearch(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	groceries, err := svc.Create(ctx, CreateInput{Title: "Groceries", Content: "buy milk", OwnerID: ownerID, Tags: []string{"home"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Title: "Standup", Content: "notes about MILK the project", OwnerID: ownerID, Tags: []string{"work"}})
	require.NoError(t, err)

	// Case-insensitive substring over title or content.
	notes, err := svc.Search(ctx, ownerID, "milk", "")
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	// Both clauses must hold when query and tag are supplied.
	notes, err = svc.Search(ctx, ownerID, "milk", "home")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, groceries.ID, notes[0].ID)

	_, err = svc.Search(ctx, ownerID, "", "")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestListTagsDistinctNonEmpty(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Title: "a", Content: "c", OwnerID: ownerID, Tags: []string{"home", "work", ""}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateInput{Title: "b", Content: "c", OwnerID: ownerID, Tags: []string{"work"}})
	require.NoError(t, err)

	tags, err := svc.ListTags(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "work"}, tags)
}

func TestDeleteReturnsSnapshot(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "T", Content: "C", OwnerID: ownerID})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, deleted.ID)
	assert.Equal(t, "T", deleted.Title)

	_, err = svc.Delete(ctx, n.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestGetByIDResolvesOwner(t *testing.T) {
	svc, ownerID := newTestService(t)
	ctx := context.Background()

	n, err := svc.Create(ctx, CreateInput{Title: "T", Content: "C", OwnerID: ownerID})
	require.NoError(t, err)

	got, owner, err := svc.GetByID(ctx, n.ID)
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)
	assert.Equal(t, "A", owner.Name)
	assert.Equal(t, "a@x.com", owner.Email)

	_, _, err = svc.GetByID(ctx, uuid.NewString())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestParseSortField(t *testing.T) {
	field, err := ParseSortField("")
	require.NoError(t, err)
	assert.Equal(t, SortUpdatedAt, field)

	_, err = ParseSortField("ownerId")
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

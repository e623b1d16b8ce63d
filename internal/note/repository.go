package note

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no note exists for the given identifier.
var ErrNotFound = errors.New("note not found")

// Repository persists notes.
type Repository interface {
	Create(ctx context.Context, n Note) error
	FindByID(ctx context.Context, id string) (Note, error)
	ListByOwner(ctx context.Context, ownerID string, f Filter, s Sort) ([]Note, error)
	Update(ctx context.Context, n Note) error
	Delete(ctx context.Context, id string) (Note, error)
	Search(ctx context.Context, ownerID, query, tag string) ([]Note, error)
	DistinctTags(ctx context.Context, ownerID string) ([]string, error)
}

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortTitle:     "title",
}

const noteColumns = `id, owner_id, title, content, tags, important, color, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL. Tags are stored
// as a text[] column.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed note repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new note.
func (r *PostgresRepository) Create(ctx context.Context, n Note) error {
	noteID, err := uuid.Parse(n.ID)
	if err != nil {
		return fmt.Errorf("parse note id: %w", err)
	}
	ownerID, err := uuid.Parse(n.OwnerID)
	if err != nil {
		return fmt.Errorf("parse owner id: %w", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notes (id, owner_id, title, content, tags, important, color, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		noteID, ownerID, n.Title, n.Content, n.Tags, n.Important, n.Color, n.CreatedAt.UTC(), n.UpdatedAt.UTC())
	return err
}

// FindByID fetches a single note.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Note, error) {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return Note{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, noteID)
	return scanNote(row)
}

// ListByOwner returns an owner's notes, filtered and sorted.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, f Filter, s Sort) ([]Note, error) {
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return []Note{}, nil
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = $1`
	args := []any{oid}
	if f.Tag != "" {
		args = append(args, f.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	if f.Important {
		query += " AND important = TRUE"
	}
	query += orderClause(s)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

// Update rewrites a note's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, n Note) error {
	noteID, err := uuid.Parse(n.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE notes
        SET title = $1, content = $2, tags = $3, important = $4, color = $5, updated_at = $6
        WHERE id = $7`,
		n.Title, n.Content, n.Tags, n.Important, n.Color, n.UpdatedAt.UTC(), noteID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a note and returns its final snapshot.
func (r *PostgresRepository) Delete(ctx context.Context, id string) (Note, error) {
	noteID, err := uuid.Parse(id)
	if err != nil {
		return Note{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `DELETE FROM notes WHERE id = $1 RETURNING `+noteColumns, noteID)
	return scanNote(row)
}

// Search matches an owner's notes by case-insensitive substring over title or
// content, by tag membership, or both.
func (r *PostgresRepository) Search(ctx context.Context, ownerID, query, tag string) ([]Note, error) {
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return []Note{}, nil
	}

	q := `SELECT ` + noteColumns + ` FROM notes WHERE owner_id = $1`
	args := []any{oid}
	if query != "" {
		args = append(args, "%"+query+"%")
		q += fmt.Sprintf(" AND (title ILIKE $%d OR content ILIKE $%d)", len(args), len(args))
	}
	if tag != "" {
		args = append(args, tag)
		q += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	q += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotes(rows)
}

// DistinctTags returns the distinct non-empty tag values across an owner's notes.
func (r *PostgresRepository) DistinctTags(ctx context.Context, ownerID string) ([]string, error) {
	oid, err := uuid.Parse(ownerID)
	if err != nil {
		return []string{}, nil
	}
	rows, err := r.db.Query(ctx, `SELECT DISTINCT t FROM notes, unnest(tags) AS t
        WHERE owner_id = $1 AND t <> '' ORDER BY t`, oid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func orderClause(s Sort) string {
	column, ok := sortColumns[s.Field]
	if !ok {
		column = "updated_at"
	}
	direction := "DESC"
	if s.Ascending {
		direction = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s", column, direction)
}

func collectNotes(rows pgx.Rows) ([]Note, error) {
	notes := []Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func scanNote(row pgx.Row) (Note, error) {
	var (
		id        uuid.UUID
		ownerID   uuid.UUID
		n         Note
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &ownerID, &n.Title, &n.Content, &n.Tags, &n.Important, &n.Color, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Note{}, ErrNotFound
		}
		return Note{}, err
	}
	n.ID = id.String()
	n.OwnerID = ownerID.String()
	if n.Tags == nil {
		n.Tags = []string{}
	}
	n.CreatedAt = createdAt.UTC()
	n.UpdatedAt = updatedAt.UTC()
	return n, nil
}

package note

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	notes map[string]Note
}

// NewMemoryRepository builds an in-memory note store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{notes: make(map[string]Note)}
}

func (r *memoryRepository) Create(_ context.Context, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[n.ID] = cloneNote(n)
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	return cloneNote(n), nil
}

func (r *memoryRepository) ListByOwner(_ context.Context, ownerID string, f Filter, s Sort) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notes := []Note{}
	for _, n := range r.notes {
		if n.OwnerID != ownerID {
			continue
		}
		if f.Tag != "" && !hasTag(n, f.Tag) {
			continue
		}
		if f.Important && !n.Important {
			continue
		}
		notes = append(notes, cloneNote(n))
	}
	sortNotes(notes, s)
	return notes, nil
}

func (r *memoryRepository) Update(_ context.Context, n Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.notes[n.ID]; !ok {
		return ErrNotFound
	}
	r.notes[n.ID] = cloneNote(n)
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) (Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.notes[id]
	if !ok {
		return Note{}, ErrNotFound
	}
	delete(r.notes, id)
	return cloneNote(n), nil
}

func (r *memoryRepository) Search(_ context.Context, ownerID, query, tag string) ([]Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(query)
	notes := []Note{}
	for _, n := range r.notes {
		if n.OwnerID != ownerID {
			continue
		}
		if query != "" {
			title := strings.ToLower(n.Title)
			content := strings.ToLower(n.Content)
			if !strings.Contains(title, needle) && !strings.Contains(content, needle) {
				continue
			}
		}
		if tag != "" && !hasTag(n, tag) {
			continue
		}
		notes = append(notes, cloneNote(n))
	}
	sortNotes(notes, DefaultSort())
	return notes, nil
}

func (r *memoryRepository) DistinctTags(_ context.Context, ownerID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	for _, n := range r.notes {
		if n.OwnerID != ownerID {
			continue
		}
		for _, t := range n.Tags {
			if t != "" {
				seen[t] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags, nil
}

func hasTag(n Note, tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

func sortNotes(notes []Note, s Sort) {
	sort.SliceStable(notes, func(i, j int) bool {
		a, b := notes[i], notes[j]
		if !s.Ascending {
			a, b = b, a
		}
		switch s.Field {
		case SortCreatedAt:
			return a.CreatedAt.Before(b.CreatedAt)
		case SortTitle:
			return a.Title < b.Title
		default:
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	})
}

func cloneNote(n Note) Note {
	tags := make([]string, len(n.Tags))
	copy(tags, n.Tags)
	n.Tags = tags
	return n
}

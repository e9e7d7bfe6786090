package repository

import (
	"context"
	"strings"

	"github.com/tanvichauhan7/fostertails/internal/model"
)

// PetSearchQuery defines filters & pagination for browsing listings.
// All filters combine conjunctively except Search, which is an
// internal disjunction over name, description and breed.
type PetSearchQuery struct {
	Species      string
	City         string
	State        string
	Age          string
	Gender       string
	Size         string
	Status       string
	AvailableFor string
	Urgency      string
	Search       string
	Page         int
	PageSize     int
}

// buildPetFilter translates a search query into a WHERE condition and
// its arguments.  Exact-match filters compare directly; city and
// state match case-insensitive substrings; the free-text search ORs
// over name, description and breed.
func buildPetFilter(q PetSearchQuery) (string, []any) {
	where := []string{}
	args := []any{}

	eq := func(col, v string) {
		if v != "" {
			where = append(where, col+"=?")
			args = append(args, v)
		}
	}
	like := func(col, v string) {
		if v != "" {
			where = append(where, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(v)+"%")
		}
	}

	eq("species", q.Species)
	like("city", q.City)
	like("state", q.State)
	eq("age", q.Age)
	eq("gender", q.Gender)
	eq("size", q.Size)
	eq("status", q.Status)
	eq("available_for", q.AvailableFor)
	eq("urgency", q.Urgency)

	if q.Search != "" {
		where = append(where,
			"(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(breed) LIKE ?)")
		needle := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, needle, needle, needle)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page of listings matching the filters, newest
// first, along with the total match count for pagination.
func (r *PetRepo) Search(ctx context.Context, q PetSearchQuery) ([]model.Pet, int64, error) {
	cond, args := buildPetFilter(q)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pets WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := "SELECT " + petCols + " FROM pets WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectPets(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tanvichauhan7/fostertails/internal/model"
)

// NGORepo provides persistence for NGO profiles and their reviews.
// The aggregate rating columns on the profile are recomputed from the
// review rows inside the same transaction that inserts a review, so
// the stored average always equals the mean of all ratings.
type NGORepo struct{ DB *sql.DB }

func NewNGORepo(db *sql.DB) *NGORepo { return &NGORepo{DB: db} }

const ngoCols = `id,account_id,org_name,reg_number,description,website,email,phone,
	street,city,state,country,pincode,logo,services,verified,total_donations,
	rating_average,rating_count,created_at,updated_at`

func scanNGO(row rowScanner) (model.NGOProfile, error) {
	var n model.NGOProfile
	err := row.Scan(&n.ID, &n.AccountID, &n.OrgName, &n.RegNumber, &n.Description,
		&n.Website, &n.Email, &n.Phone, &n.Street, &n.City, &n.State, &n.Country,
		&n.Pincode, &n.Logo, &n.Services, &n.Verified, &n.TotalDonations,
		&n.RatingAverage, &n.RatingCount, &n.CreatedAt, &n.UpdatedAt)
	if err == sql.ErrNoRows {
		return n, ErrNotFound
	}
	return n, err
}

// Create inserts a profile and denormalizes the organization name and
// registration number onto the owning account in one transaction.
// Uniqueness of account, organization name and registration number is
// enforced by the table's unique keys.
func (r *NGORepo) Create(ctx context.Context, n model.NGOProfile) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO ngo_profiles (account_id,org_name,reg_number,description,website,email,phone,
			street,city,state,country,pincode,logo,services)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		n.AccountID, n.OrgName, n.RegNumber, n.Description, n.Website, n.Email, n.Phone,
		n.Street, n.City, n.State, n.Country, n.Pincode, n.Logo, n.Services)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts SET org_name=?, org_reg_number=? WHERE id=?",
		n.OrgName, n.RegNumber, n.AccountID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByID fetches a profile by id.
func (r *NGORepo) GetByID(ctx context.Context, id uint64) (model.NGOProfile, error) {
	return scanNGO(r.DB.QueryRowContext(ctx,
		"SELECT "+ngoCols+" FROM ngo_profiles WHERE id=? LIMIT 1", id))
}

// GetByAccount fetches the profile owned by an account.
func (r *NGORepo) GetByAccount(ctx context.Context, accountID uint64) (model.NGOProfile, error) {
	return scanNGO(r.DB.QueryRowContext(ctx,
		"SELECT "+ngoCols+" FROM ngo_profiles WHERE account_id=? LIMIT 1", accountID))
}

// NameOrRegExists reports whether a profile with the organization
// name or registration number already exists.
func (r *NGORepo) NameOrRegExists(ctx context.Context, orgName, regNumber string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM ngo_profiles WHERE org_name=? OR reg_number=? LIMIT 1",
		orgName, regNumber).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// NGOSearchQuery defines filters & pagination for browsing profiles.
type NGOSearchQuery struct {
	City     string
	State    string
	Services []string
	Verified *bool
	Search   string
	Page     int
	PageSize int
}

// buildNGOFilter translates a profile search into a WHERE condition
// and its arguments.  Services is a membership test against the
// stored comma list.
func buildNGOFilter(q NGOSearchQuery) (string, []any) {
	where := []string{}
	args := []any{}

	like := func(col, v string) {
		if v != "" {
			where = append(where, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+strings.ToLower(v)+"%")
		}
	}
	like("city", q.City)
	like("state", q.State)

	if len(q.Services) > 0 {
		sub := []string{}
		for _, s := range q.Services {
			s = strings.TrimSpace(strings.ToLower(s))
			if s == "" {
				continue
			}
			sub = append(sub, "FIND_IN_SET(?, services) > 0")
			args = append(args, s)
		}
		if len(sub) > 0 {
			where = append(where, "("+strings.Join(sub, " OR ")+")")
		}
	}
	if q.Verified != nil {
		where = append(where, "verified=?")
		args = append(args, *q.Verified)
	}
	if q.Search != "" {
		where = append(where, "(LOWER(org_name) LIKE ? OR LOWER(description) LIKE ?)")
		needle := "%" + strings.ToLower(q.Search) + "%"
		args = append(args, needle, needle)
	}

	if len(where) == 0 {
		return "1=1", args
	}
	return strings.Join(where, " AND "), args
}

// Search returns one page of profiles sorted verified-first, then by
// rating descending, then newest, plus the total match count.
func (r *NGORepo) Search(ctx context.Context, q NGOSearchQuery) ([]model.NGOProfile, int64, error) {
	cond, args := buildNGOFilter(q)

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM ngo_profiles WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := "SELECT " + ngoCols + " FROM ngo_profiles WHERE " + cond +
		" ORDER BY verified DESC, rating_average DESC, created_at DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectNGOs(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Verified returns verified profiles ordered by rating.
func (r *NGORepo) Verified(ctx context.Context, limit int) ([]model.NGOProfile, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ngoCols+" FROM ngo_profiles WHERE verified=1 ORDER BY rating_average DESC LIMIT ?",
		limit)
	if err != nil {
		return nil, err
	}
	return collectNGOs(rows)
}

func collectNGOs(rows *sql.Rows) ([]model.NGOProfile, error) {
	defer rows.Close()
	out := []model.NGOProfile{}
	for rows.Next() {
		n, err := scanNGO(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// NGOUpdate carries owner-editable profile fields.  The verified flag
// is deliberately absent: it can only change through SetVerified.
type NGOUpdate struct {
	OrgName     *string
	RegNumber   *string
	Description *string
	Website     *string
	Email       *string
	Phone       *string
	Street      *string
	City        *string
	State       *string
	Country     *string
	Pincode     *string
	Logo        *string
	Services    *string
}

// Update applies a partial update to a profile.
func (r *NGORepo) Update(ctx context.Context, id uint64, u NGOUpdate) error {
	set := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+"=?")
			args = append(args, *v)
		}
	}
	add("org_name", u.OrgName)
	add("reg_number", u.RegNumber)
	add("description", u.Description)
	add("website", u.Website)
	add("email", u.Email)
	add("phone", u.Phone)
	add("street", u.Street)
	add("city", u.City)
	add("state", u.State)
	add("country", u.Country)
	add("pincode", u.Pincode)
	add("logo", u.Logo)
	add("services", u.Services)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE ngo_profiles SET "+strings.Join(set, ",")+" WHERE id=?", args...)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrDuplicate
	}
	return err
}

// AddReview inserts a review and recomputes the aggregate rating in
// the same transaction.  The recomputation runs AVG/COUNT over all
// review rows rather than adjusting incrementally.  Duplicate reviews
// by the same reviewer return ErrAlreadyReviewed.
func (r *NGORepo) AddReview(ctx context.Context, v model.NGOReview) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM ngo_reviews WHERE ngo_id=? AND reviewer_id=? LIMIT 1",
		v.NGOID, v.ReviewerID).Scan(&one)
	if err == nil {
		return ErrAlreadyReviewed
	}
	if err != sql.ErrNoRows {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO ngo_reviews (ngo_id, reviewer_id, rating, comment) VALUES (?,?,?,?)",
		v.NGOID, v.ReviewerID, v.Rating, v.Comment); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyReviewed
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ngo_profiles SET
			rating_average=(SELECT AVG(rating) FROM ngo_reviews WHERE ngo_id=?),
			rating_count=(SELECT COUNT(*) FROM ngo_reviews WHERE ngo_id=?)
		 WHERE id=?`, v.NGOID, v.NGOID, v.NGOID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReviewsForNGO returns a profile's reviews, newest first.
func (r *NGORepo) ReviewsForNGO(ctx context.Context, ngoID uint64) ([]model.NGOReview, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,ngo_id,reviewer_id,rating,comment,created_at FROM ngo_reviews WHERE ngo_id=? ORDER BY id DESC",
		ngoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.NGOReview{}
	for rows.Next() {
		var v model.NGOReview
		if err := rows.Scan(&v.ID, &v.NGOID, &v.ReviewerID, &v.Rating, &v.Comment, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// SetVerified marks a profile as verified and mirrors the flag onto
// the denormalized account column in the same transaction.
func (r *NGORepo) SetVerified(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, "UPDATE ngo_profiles SET verified=1 WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := tx.QueryRowContext(ctx, "SELECT 1 FROM ngo_profiles WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE accounts a JOIN ngo_profiles n ON n.account_id=a.id SET a.org_verified=1 WHERE n.id=?",
		id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

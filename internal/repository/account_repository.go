package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/utils"
)

// AccountRepo provides persistence for the `accounts` table and the
// `account_pets` relationship table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

const accountCols = `id,name,email,password_hash,phone,role,avatar,city,state,country,pincode,
	org_name,org_reg_number,org_verified,is_active,created_at,updated_at`

func scanAccount(row *sql.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Phone, &a.Role, &a.Avatar,
		&a.City, &a.State, &a.Country, &a.Pincode,
		&a.OrgName, &a.OrgRegNumber, &a.OrgVerified, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

// Create inserts an account with a freshly hashed password and returns its ID.
func (r *AccountRepo) Create(ctx context.Context, name, email, password, phone, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (name, email, password_hash, phone, role) VALUES (?,?,?,?,?)",
		strings.TrimSpace(name), email, hash, strings.TrimSpace(phone), role)
	if err != nil {
		// MySQL error 1062 = duplicate entry
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE email=? LIMIT 1", email))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountCols+" FROM accounts WHERE id=? LIMIT 1", id))
}

// ProfileUpdate carries the caller-editable profile fields.  Nil
// pointers leave the stored value untouched.
type ProfileUpdate struct {
	Name    *string
	Phone   *string
	Avatar  *string
	City    *string
	State   *string
	Country *string
	Pincode *string
}

// UpdateProfile applies a partial profile update.  Passing an update
// with no set fields is a no-op.
func (r *AccountRepo) UpdateProfile(ctx context.Context, id uint64, p ProfileUpdate) error {
	set := []string{}
	args := []any{}
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+"=?")
			args = append(args, strings.TrimSpace(*v))
		}
	}
	add("name", p.Name)
	add("phone", p.Phone)
	add("avatar", p.Avatar)
	add("city", p.City)
	add("state", p.State)
	add("country", p.Country)
	add("pincode", p.Pincode)
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET "+strings.Join(set, ",")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Row may exist with identical values; verify presence.
		var one int
		if err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM accounts WHERE id=?", id).Scan(&one); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *AccountRepo) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, "UPDATE accounts SET password_hash=? WHERE id=?", hash, id)
	return err
}

// SetOrgDetails denormalizes a subset of NGO profile fields onto the
// owning account, mirroring what the profile stores.
func (r *AccountRepo) SetOrgDetails(ctx context.Context, id uint64, orgName, regNumber string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET org_name=?, org_reg_number=? WHERE id=?", orgName, regNumber, id)
	return err
}

// PetRelations returns the pet ids an account has posted, fostered
// and adopted.  Posted listings derive from pets.posted_by; the other
// two lists come from account_pets rows appended on request approval.
func (r *AccountRepo) PetRelations(ctx context.Context, id uint64) (posted, fostered, adopted []uint64, err error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id FROM pets WHERE posted_by=? ORDER BY id", id)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var pid uint64
		if err := rows.Scan(&pid); err != nil {
			return nil, nil, nil, err
		}
		posted = append(posted, pid)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, err
	}

	rel, err := r.DB.QueryContext(ctx,
		"SELECT pet_id, relation FROM account_pets WHERE account_id=? ORDER BY id", id)
	if err != nil {
		return nil, nil, nil, err
	}
	defer rel.Close()
	for rel.Next() {
		var pid uint64
		var kind string
		if err := rel.Scan(&pid, &kind); err != nil {
			return nil, nil, nil, err
		}
		switch kind {
		case model.RelationFostered:
			fostered = append(fostered, pid)
		case model.RelationAdopted:
			adopted = append(adopted, pid)
		}
	}
	return posted, fostered, adopted, rel.Err()
}

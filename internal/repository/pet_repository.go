package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tanvichauhan7/fostertails/internal/model"
)

// PetRepo provides persistence for pet listings and their embedded
// foster/adoption requests.  Multi-row effects (request approval,
// listing deletion) run inside a single transaction so that a listing
// can never read as adopted without a matching approved request.
type PetRepo struct{ DB *sql.DB }

func NewPetRepo(db *sql.DB) *PetRepo { return &PetRepo{DB: db} }

const petCols = `id,name,species,breed,age,gender,size,color,description,
	city,state,country,pincode,temperament,status,available_for,posted_by,
	current_caretaker,urgency,featured,views,created_at,updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanPet(row rowScanner) (model.Pet, error) {
	var p model.Pet
	var caretaker sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Species, &p.Breed, &p.Age, &p.Gender, &p.Size,
		&p.Color, &p.Description, &p.City, &p.State, &p.Country, &p.Pincode,
		&p.Temperament, &p.Status, &p.AvailableFor, &p.PostedBy,
		&caretaker, &p.Urgency, &p.Featured, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	if caretaker.Valid {
		id := uint64(caretaker.Int64)
		p.CurrentCaretaker = &id
	}
	return p, nil
}

// Create inserts a listing and returns its ID.  The caller becomes
// the owner; the posted list needs no separate write because it is
// derived from posted_by.
func (r *PetRepo) Create(ctx context.Context, p model.Pet) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO pets (name,species,breed,age,gender,size,color,description,
			city,state,country,pincode,temperament,status,available_for,posted_by,urgency)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.Name, p.Species, p.Breed, p.Age, p.Gender, p.Size, p.Color, p.Description,
		p.City, p.State, p.Country, p.Pincode, p.Temperament, p.Status, p.AvailableFor,
		p.PostedBy, p.Urgency)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a single listing.
func (r *PetRepo) GetByID(ctx context.Context, id uint64) (model.Pet, error) {
	return scanPet(r.DB.QueryRowContext(ctx,
		"SELECT "+petCols+" FROM pets WHERE id=? LIMIT 1", id))
}

// IncrementViews bumps the view counter.  Last write wins; there is
// no deduplication by viewer.
func (r *PetRepo) IncrementViews(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE pets SET views=views+1 WHERE id=?", id)
	return err
}

// PetUpdate carries owner-editable listing fields.  Nil pointers
// leave the stored value untouched.
type PetUpdate struct {
	Name         *string
	Species      *string
	Breed        *string
	Age          *string
	Gender       *string
	Size         *string
	Color        *string
	Description  *string
	City         *string
	State        *string
	Country      *string
	Pincode      *string
	Temperament  *string
	Status       *string
	AvailableFor *string
	Urgency      *string
	Featured     *bool
}

// Update applies a partial update to a listing.
func (r *PetRepo) Update(ctx context.Context, id uint64, u PetUpdate) error {
	set := []string{}
	args := []any{}
	addStr := func(col string, v *string) {
		if v != nil {
			set = append(set, col+"=?")
			args = append(args, *v)
		}
	}
	addStr("name", u.Name)
	addStr("species", u.Species)
	addStr("breed", u.Breed)
	addStr("age", u.Age)
	addStr("gender", u.Gender)
	addStr("size", u.Size)
	addStr("color", u.Color)
	addStr("description", u.Description)
	addStr("city", u.City)
	addStr("state", u.State)
	addStr("country", u.Country)
	addStr("pincode", u.Pincode)
	addStr("temperament", u.Temperament)
	addStr("status", u.Status)
	addStr("available_for", u.AvailableFor)
	addStr("urgency", u.Urgency)
	if u.Featured != nil {
		set = append(set, "featured=?")
		args = append(args, *u.Featured)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE pets SET "+strings.Join(set, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes a listing together with its requests and any
// relationship rows pointing at it.
func (r *PetRepo) Delete(ctx context.Context, id uint64) error {
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
	if _, err := tx.ExecContext(ctx, "DELETE FROM pet_requests WHERE pet_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM account_pets WHERE pet_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM pets WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ByOwner lists an account's posted listings, newest first.
func (r *PetRepo) ByOwner(ctx context.Context, ownerID uint64) ([]model.Pet, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+petCols+" FROM pets WHERE posted_by=? ORDER BY created_at DESC, id DESC", ownerID)
	if err != nil {
		return nil, err
	}
	return collectPets(rows)
}

// Featured returns available listings that are either flagged as
// featured or carry high/emergency urgency, most urgent first.
func (r *PetRepo) Featured(ctx context.Context, limit int) ([]model.Pet, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+petCols+` FROM pets
		 WHERE status=? AND (featured=1 OR urgency IN ('high','emergency'))
		 ORDER BY FIELD(urgency,'emergency','high','medium','low'), created_at DESC
		 LIMIT ?`, model.StatusAvailable, limit)
	if err != nil {
		return nil, err
	}
	return collectPets(rows)
}

func collectPets(rows *sql.Rows) ([]model.Pet, error) {
	defer rows.Close()
	out := []model.Pet{}
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- embedded requests ----

func scanRequest(row rowScanner) (model.PetRequest, error) {
	var q model.PetRequest
	err := row.Scan(&q.ID, &q.PetID, &q.RequesterID, &q.RequestType, &q.Status,
		&q.Message, &q.ContactPhone, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return q, ErrNotFound
	}
	return q, err
}

const requestCols = "id,pet_id,requester_id,request_type,status,message,contact_phone,created_at"

// HasPendingRequest reports whether the requester already has a
// pending request on the listing.  Only pending requests block a new
// submission; a fresh request after rejection is allowed.
func (r *PetRepo) HasPendingRequest(ctx context.Context, petID, requesterID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM pet_requests WHERE pet_id=? AND requester_id=? AND status=? LIMIT 1",
		petID, requesterID, model.RequestPending).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// CreateRequest appends a pending request to a listing.
func (r *PetRepo) CreateRequest(ctx context.Context, q model.PetRequest) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO pet_requests (pet_id, requester_id, request_type, status, message, contact_phone)
		 VALUES (?,?,?,?,?,?)`,
		q.PetID, q.RequesterID, q.RequestType, model.RequestPending, q.Message, q.ContactPhone)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// RequestsForPet returns a listing's requests, oldest first, matching
// the order they were submitted.
func (r *PetRepo) RequestsForPet(ctx context.Context, petID uint64) ([]model.PetRequest, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+requestCols+" FROM pet_requests WHERE pet_id=? ORDER BY id", petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.PetRequest{}
	for rows.Next() {
		q, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ResolveRequest sets a request's status and, on approval, performs
// the dependent writes in the same transaction: the listing moves to
// fostered or adopted according to the request type, the requester
// becomes the current caretaker, and a relationship row is appended
// for the requester.  Rejection writes only the request status.
func (r *PetRepo) ResolveRequest(ctx context.Context, petID, requestID uint64, status string) (model.PetRequest, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.PetRequest{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	req, err := scanRequest(tx.QueryRowContext(ctx,
		"SELECT "+requestCols+" FROM pet_requests WHERE id=? AND pet_id=? LIMIT 1",
		requestID, petID))
	if err != nil {
		return model.PetRequest{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE pet_requests SET status=? WHERE id=?", status, req.ID); err != nil {
		return model.PetRequest{}, err
	}
	req.Status = status

	if status == model.RequestApproved {
		newStatus := model.StatusFostered
		relation := model.RelationFostered
		if req.RequestType == model.RequestAdoption {
			newStatus = model.StatusAdopted
			relation = model.RelationAdopted
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE pets SET status=?, current_caretaker=? WHERE id=?",
			newStatus, req.RequesterID, petID); err != nil {
			return model.PetRequest{}, err
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO account_pets (account_id, pet_id, relation) VALUES (?,?,?)",
			req.RequesterID, petID, relation); err != nil {
			return model.PetRequest{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.PetRequest{}, err
	}
	committed = true
	return req, nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/tanvichauhan7/fostertails/internal/model"
)

// DonationRepo provides persistence for the `donations` table.
// Marking a donation completed and incrementing the recipient
// profile's running total happen inside one transaction so a crash
// between the two writes cannot leave the total behind the ledger.
type DonationRepo struct{ DB *sql.DB }

func NewDonationRepo(db *sql.DB) *DonationRepo { return &DonationRepo{DB: db} }

const donationCols = `id,donor_id,recipient_id,donor_name,donor_email,amount,currency,
	status,method,order_ref,payment_ref,signature,donation_type,purpose,message,anonymous,
	created_at,updated_at`

func scanDonation(row rowScanner) (model.Donation, error) {
	var d model.Donation
	err := row.Scan(&d.ID, &d.DonorID, &d.RecipientID, &d.DonorName, &d.DonorEmail,
		&d.Amount, &d.Currency, &d.Status, &d.Method, &d.OrderRef, &d.PaymentRef,
		&d.Signature, &d.Type, &d.Purpose, &d.Message, &d.Anonymous,
		&d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	return d, err
}

// Create inserts a pending donation and returns its ID.
func (r *DonationRepo) Create(ctx context.Context, d model.Donation) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO donations (donor_id,recipient_id,donor_name,donor_email,amount,currency,
			status,method,order_ref,donation_type,purpose,message,anonymous)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		d.DonorID, d.RecipientID, d.DonorName, d.DonorEmail, d.Amount, d.Currency,
		model.PaymentPending, d.Method, d.OrderRef, d.Type, d.Purpose, d.Message, d.Anonymous)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a donation by id.
func (r *DonationRepo) GetByID(ctx context.Context, id uint64) (model.Donation, error) {
	return scanDonation(r.DB.QueryRowContext(ctx,
		"SELECT "+donationCols+" FROM donations WHERE id=? LIMIT 1", id))
}

// GetByOrderRef fetches a donation by its provider order reference.
func (r *DonationRepo) GetByOrderRef(ctx context.Context, ref string) (model.Donation, error) {
	return scanDonation(r.DB.QueryRowContext(ctx,
		"SELECT "+donationCols+" FROM donations WHERE order_ref=? LIMIT 1", ref))
}

// MarkCompleted records the provider references, flips the status to
// completed and increments the recipient NGO's donation total, all in
// one transaction.  The returned donation reflects the new state.
func (r *DonationRepo) MarkCompleted(ctx context.Context, orderRef, paymentRef, signature string) (model.Donation, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Donation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	d, err := scanDonation(tx.QueryRowContext(ctx,
		"SELECT "+donationCols+" FROM donations WHERE order_ref=? LIMIT 1", orderRef))
	if err != nil {
		return model.Donation{}, err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE donations SET status=?, payment_ref=?, signature=? WHERE id=?",
		model.PaymentCompleted, paymentRef, signature, d.ID); err != nil {
		return model.Donation{}, err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE ngo_profiles SET total_donations=total_donations+? WHERE account_id=?",
		d.Amount, d.RecipientID); err != nil {
		return model.Donation{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Donation{}, err
	}
	committed = true
	d.Status = model.PaymentCompleted
	d.PaymentRef = paymentRef
	d.Signature = signature
	return d, nil
}

// DonationSearchQuery defines the admin listing filters.
type DonationSearchQuery struct {
	Status   string
	Type     string
	Purpose  string
	Page     int
	PageSize int
}

// Search returns one page of donations matching the filters, newest
// first, plus the total match count.
func (r *DonationRepo) Search(ctx context.Context, q DonationSearchQuery) ([]model.Donation, int64, error) {
	where := []string{}
	args := []any{}
	eq := func(col, v string) {
		if v != "" {
			where = append(where, col+"=?")
			args = append(args, v)
		}
	}
	eq("status", q.Status)
	eq("donation_type", q.Type)
	eq("purpose", q.Purpose)

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM donations WHERE "+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize
	dataSQL := "SELECT " + donationCols + " FROM donations WHERE " + cond +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.DB.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	out, err := collectDonations(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ByDonor lists an account's donations, newest first.
func (r *DonationRepo) ByDonor(ctx context.Context, donorID uint64) ([]model.Donation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+donationCols+" FROM donations WHERE donor_id=? ORDER BY created_at DESC, id DESC",
		donorID)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

// ReceivedByNGO lists completed donations received by an account,
// newest first.
func (r *DonationRepo) ReceivedByNGO(ctx context.Context, recipientID uint64) ([]model.Donation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+donationCols+" FROM donations WHERE recipient_id=? AND status=? ORDER BY created_at DESC, id DESC",
		recipientID, model.PaymentCompleted)
	if err != nil {
		return nil, err
	}
	return collectDonations(rows)
}

func collectDonations(rows *sql.Rows) ([]model.Donation, error) {
	defer rows.Close()
	out := []model.Donation{}
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

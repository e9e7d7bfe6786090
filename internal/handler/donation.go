package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/config"
	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/queue"
	"github.com/tanvichauhan7/fostertails/internal/repository"
	"github.com/tanvichauhan7/fostertails/internal/utils"
)

// DonationStore is the persistence surface the donation endpoints
// need.  repository.DonationRepo satisfies it.
type DonationStore interface {
	Create(ctx context.Context, d model.Donation) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Donation, error)
	GetByOrderRef(ctx context.Context, ref string) (model.Donation, error)
	MarkCompleted(ctx context.Context, orderRef, paymentRef, signature string) (model.Donation, error)
	Search(ctx context.Context, q repository.DonationSearchQuery) ([]model.Donation, int64, error)
	ByDonor(ctx context.Context, donorID uint64) ([]model.Donation, error)
	ReceivedByNGO(ctx context.Context, recipientID uint64) ([]model.Donation, error)
}

// DonationHandler bundles dependencies for donation endpoints.  The
// recipient of a donation must own an NGO profile, so the handler also
// needs the NGO store.  PublishCompleted is optional; when nil no
// event is emitted.
type DonationHandler struct {
	Cfg              config.Config
	Donations        DonationStore
	NGOs             NGOStore
	PublishCompleted func(context.Context, queue.DonationCompletedEvent) error
}

func NewDonationHandler(cfg config.Config, donations DonationStore, ngos NGOStore) *DonationHandler {
	if donations == nil || ngos == nil {
		panic("nil store passed to NewDonationHandler")
	}
	return &DonationHandler{Cfg: cfg, Donations: donations, NGOs: ngos}
}

// ----- DTOs -----

type donationCreateReq struct {
	NGO       uint64  `json:"ngo" validate:"required"`
	Amount    float64 `json:"amount" validate:"required"`
	Currency  string  `json:"currency"`
	Method    string  `json:"method"`
	Type      string  `json:"donationType" validate:"omitempty,oneof=one-time monthly annual"`
	Purpose   string  `json:"purpose" validate:"omitempty,oneof=general medical food shelter rescue"`
	Message   string  `json:"message"`
	Anonymous bool    `json:"anonymous"`
}

type donationVerifyReq struct {
	OrderRef   string `json:"orderId" validate:"required"`
	PaymentRef string `json:"paymentId" validate:"required"`
	Signature  string `json:"signature" validate:"required"`
}

type donationView struct {
	ID         uint64    `json:"id"`
	Donor      uint64    `json:"donor"`
	DonorName  string    `json:"donorName"`
	NGO        uint64    `json:"ngo"`
	Amount     float64   `json:"amount"`
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	Method     string    `json:"method,omitempty"`
	OrderRef   string    `json:"orderId"`
	PaymentRef string    `json:"paymentId,omitempty"`
	Type       string    `json:"donationType"`
	Purpose    string    `json:"purpose"`
	Message    string    `json:"message,omitempty"`
	Anonymous  bool      `json:"anonymous"`
	CreatedAt  time.Time `json:"createdAt"`
}

func viewDonation(d model.Donation) donationView {
	return donationView{
		ID:         d.ID,
		Donor:      d.DonorID,
		DonorName:  d.DonorName,
		NGO:        d.RecipientID,
		Amount:     d.Amount,
		Currency:   d.Currency,
		Status:     d.Status,
		Method:     d.Method,
		OrderRef:   d.OrderRef,
		PaymentRef: d.PaymentRef,
		Type:       d.Type,
		Purpose:    d.Purpose,
		Message:    d.Message,
		Anonymous:  d.Anonymous,
		CreatedAt:  d.CreatedAt,
	}
}

func viewDonations(donations []model.Donation) []donationView {
	out := make([]donationView, 0, len(donations))
	for _, d := range donations {
		out = append(out, viewDonation(d))
	}
	return out
}

// Create handles POST /api/donations.  The payment provider
// integration is a stub: the order reference is generated locally
// instead of being created with the provider, and the response mimics
// the provider's order shape (amount in minor units) so the client
// flow stays unchanged.
func (h *DonationHandler) Create(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	var req donationCreateReq
	if !bindAndValidate(c, &req) {
		return nil
	}
	if req.Amount < 1 {
		return fail(c, http.StatusBadRequest, "Minimum donation amount is 1")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ngo, err := h.NGOs.GetByAccount(ctx, req.NGO)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "NGO not found")
		}
		return failErr(c, "Server error while creating donation", err, !h.Cfg.IsProd())
	}

	d := model.Donation{
		DonorID:     acct.ID,
		RecipientID: ngo.AccountID,
		DonorName:   acct.Name,
		DonorEmail:  acct.Email,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Method:      req.Method,
		OrderRef:    fmt.Sprintf("order_%d", time.Now().UnixNano()),
		Type:        req.Type,
		Purpose:     req.Purpose,
		Message:     req.Message,
		Anonymous:   req.Anonymous,
	}
	if d.Anonymous {
		d.DonorName = "Anonymous"
	}
	if d.Currency == "" {
		d.Currency = "INR"
	}
	if d.Type == "" {
		d.Type = "one-time"
	}
	if d.Purpose == "" {
		d.Purpose = "general"
	}

	id, err := h.Donations.Create(ctx, d)
	if err != nil {
		return failErr(c, "Server error while creating donation", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusCreated, "Donation initiated", echo.Map{
		"donationId": id,
		"order": echo.Map{
			"id":       d.OrderRef,
			"amount":   int64(d.Amount * 100),
			"currency": d.Currency,
		},
	})
}

// Verify handles POST /api/donations/verify.  When a webhook secret is
// configured the provider signature is checked; without one the check
// is skipped, which matches the stubbed provider but must not ship to
// production.
func (h *DonationHandler) Verify(c echo.Context) error {
	var req donationVerifyReq
	if !bindAndValidate(c, &req) {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Donations.GetByOrderRef(ctx, req.OrderRef)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Donation not found")
		}
		return failErr(c, "Server error while verifying donation", err, !h.Cfg.IsProd())
	}
	if d.Status == model.PaymentCompleted {
		return fail(c, http.StatusBadRequest, "Donation already verified")
	}

	if h.Cfg.PaymentSecret != "" {
		if !utils.VerifyPaymentSignature(h.Cfg.PaymentSecret, req.OrderRef, req.PaymentRef, req.Signature) {
			return fail(c, http.StatusBadRequest, "Payment signature verification failed")
		}
	} else {
		log.Printf("donations: PAYMENT_WEBHOOK_SECRET not set, accepting order %s without signature verification", req.OrderRef)
	}

	d, err = h.Donations.MarkCompleted(ctx, req.OrderRef, req.PaymentRef, req.Signature)
	if err != nil {
		return failErr(c, "Server error while verifying donation", err, !h.Cfg.IsProd())
	}

	if h.PublishCompleted != nil {
		ev := queue.DonationCompletedEvent{
			DonationID:  d.ID,
			OrderRef:    d.OrderRef,
			DonorID:     d.DonorID,
			DonorName:   d.DonorName,
			RecipientID: d.RecipientID,
			Amount:      d.Amount,
			Currency:    d.Currency,
			Purpose:     d.Purpose,
			CompletedAt: time.Now().UTC().Format(time.RFC3339),
		}
		go func() { _ = h.PublishCompleted(context.Background(), ev) }()
	}
	return ok(c, http.StatusOK, "Donation verified successfully", echo.Map{"donation": viewDonation(d)})
}

// AdminList handles GET /api/donations, admin only.
func (h *DonationHandler) AdminList(c echo.Context) error {
	page, limit := pageParams(c, 20)
	q := repository.DonationSearchQuery{
		Status:   c.QueryParam("status"),
		Type:     c.QueryParam("donationType"),
		Purpose:  c.QueryParam("purpose"),
		Page:     page,
		PageSize: limit,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	donations, total, err := h.Donations.Search(ctx, q)
	if err != nil {
		return failErr(c, "Server error while fetching donations", err, !h.Cfg.IsProd())
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"count":       len(donations),
		"total":       total,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"donations":   viewDonations(donations),
	})
}

// MyDonations handles GET /api/donations/my-donations, returning the
// caller's donations plus the sum of the completed ones.
func (h *DonationHandler) MyDonations(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	donations, err := h.Donations.ByDonor(ctx, acct.ID)
	if err != nil {
		return failErr(c, "Server error while fetching donations", err, !h.Cfg.IsProd())
	}
	var totalDonated float64
	for _, d := range donations {
		if d.Status == model.PaymentCompleted {
			totalDonated += d.Amount
		}
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"count":        len(donations),
		"totalDonated": totalDonated,
		"donations":    viewDonations(donations),
	})
}

// NGOReceived handles GET /api/donations/ngo-received, restricted to
// the `ngo` role.  Alongside the completed donations it returns the
// overall total and per-month totals keyed like "August 2026".
func (h *DonationHandler) NGOReceived(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	donations, err := h.Donations.ReceivedByNGO(ctx, acct.ID)
	if err != nil {
		return failErr(c, "Server error while fetching donations", err, !h.Cfg.IsProd())
	}
	var totalReceived float64
	for _, d := range donations {
		totalReceived += d.Amount
	}
	return ok(c, http.StatusOK, "", echo.Map{
		"count":         len(donations),
		"totalReceived": totalReceived,
		"monthlyTotals": monthlyTotals(donations),
		"donations":     viewDonations(donations),
	})
}

// monthlyTotals buckets completed donation amounts by calendar month.
func monthlyTotals(donations []model.Donation) map[string]float64 {
	out := map[string]float64{}
	for _, d := range donations {
		out[d.CreatedAt.Format("January 2006")] += d.Amount
	}
	return out
}

// GetOne handles GET /api/donations/:id.  Only the donor, the
// recipient or an admin may read a donation.
func (h *DonationHandler) GetOne(c echo.Context) error {
	acct, err := currentAccount(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "Not authorized")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid donation id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	d, err := h.Donations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Donation not found")
		}
		return failErr(c, "Server error while fetching donation", err, !h.Cfg.IsProd())
	}
	if d.DonorID != acct.ID && d.RecipientID != acct.ID && acct.Role != model.RoleAdmin {
		return fail(c, http.StatusForbidden, "You are not authorized to view this donation")
	}
	return ok(c, http.StatusOK, "", echo.Map{"donation": viewDonation(d)})
}

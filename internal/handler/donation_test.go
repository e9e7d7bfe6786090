package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/queue"
	"github.com/tanvichauhan7/fostertails/internal/repository"
	"github.com/tanvichauhan7/fostertails/internal/utils"
)

type mockDonationStore struct {
	create        func(ctx context.Context, d model.Donation) (uint64, error)
	getByID       func(ctx context.Context, id uint64) (model.Donation, error)
	getByOrderRef func(ctx context.Context, ref string) (model.Donation, error)
	markCompleted func(ctx context.Context, orderRef, paymentRef, signature string) (model.Donation, error)
	search        func(ctx context.Context, q repository.DonationSearchQuery) ([]model.Donation, int64, error)
	byDonor       func(ctx context.Context, donorID uint64) ([]model.Donation, error)
	receivedByNGO func(ctx context.Context, recipientID uint64) ([]model.Donation, error)
}

func (m *mockDonationStore) Create(ctx context.Context, d model.Donation) (uint64, error) {
	return m.create(ctx, d)
}
func (m *mockDonationStore) GetByID(ctx context.Context, id uint64) (model.Donation, error) {
	return m.getByID(ctx, id)
}
func (m *mockDonationStore) GetByOrderRef(ctx context.Context, ref string) (model.Donation, error) {
	return m.getByOrderRef(ctx, ref)
}
func (m *mockDonationStore) MarkCompleted(ctx context.Context, orderRef, paymentRef, signature string) (model.Donation, error) {
	return m.markCompleted(ctx, orderRef, paymentRef, signature)
}
func (m *mockDonationStore) Search(ctx context.Context, q repository.DonationSearchQuery) ([]model.Donation, int64, error) {
	return m.search(ctx, q)
}
func (m *mockDonationStore) ByDonor(ctx context.Context, donorID uint64) ([]model.Donation, error) {
	return m.byDonor(ctx, donorID)
}
func (m *mockDonationStore) ReceivedByNGO(ctx context.Context, recipientID uint64) ([]model.Donation, error) {
	return m.receivedByNGO(ctx, recipientID)
}

// ngoAccountStore returns a profile for account 7 and not-found for
// everyone else.
func ngoAccountStore() *mockNGOStore {
	return &mockNGOStore{
		getByAccount: func(_ context.Context, accountID uint64) (model.NGOProfile, error) {
			if accountID == 7 {
				return pawsProfile(), nil
			}
			return model.NGOProfile{}, repository.ErrNotFound
		},
	}
}

func TestDonationCreate(t *testing.T) {
	t.Run("amount below minimum", func(t *testing.T) {
		h := NewDonationHandler(testCfg, &mockDonationStore{}, ngoAccountStore())

		c, rec := newTestContext(http.MethodPost, "/api/donations", `{"ngo":7,"amount":0.5}`)
		asUser(c, 3, model.RoleUser)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		wantMessage(t, rec, http.StatusBadRequest, "Minimum donation amount is 1")
	})

	t.Run("recipient has no profile", func(t *testing.T) {
		h := NewDonationHandler(testCfg, &mockDonationStore{}, ngoAccountStore())

		c, rec := newTestContext(http.MethodPost, "/api/donations", `{"ngo":99,"amount":500}`)
		asUser(c, 3, model.RoleUser)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		wantMessage(t, rec, http.StatusNotFound, "NGO not found")
	})

	t.Run("success with defaults", func(t *testing.T) {
		var created model.Donation
		store := &mockDonationStore{
			create: func(_ context.Context, d model.Donation) (uint64, error) {
				created = d
				return 21, nil
			},
		}
		h := NewDonationHandler(testCfg, store, ngoAccountStore())

		c, rec := newTestContext(http.MethodPost, "/api/donations", `{"ngo":7,"amount":500}`)
		acct := asUser(c, 3, model.RoleUser)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		wantMessage(t, rec, http.StatusCreated, "Donation initiated")

		if created.DonorName != acct.Name || created.DonorEmail != acct.Email {
			t.Errorf("donor snapshot missing: %+v", created)
		}
		if created.Currency != "INR" || created.Type != "one-time" || created.Purpose != "general" {
			t.Errorf("defaults not applied: %+v", created)
		}
		if !strings.HasPrefix(created.OrderRef, "order_") {
			t.Errorf("order ref = %q, want order_ prefix", created.OrderRef)
		}

		body := decodeBody(t, rec)
		order := body["order"].(map[string]any)
		if order["amount"].(float64) != 50000 {
			t.Errorf("order amount = %v, want 50000 subunits", order["amount"])
		}
		if order["currency"].(string) != "INR" {
			t.Errorf("order currency = %v, want INR", order["currency"])
		}
	})

	t.Run("anonymous snapshots Anonymous", func(t *testing.T) {
		var created model.Donation
		store := &mockDonationStore{
			create: func(_ context.Context, d model.Donation) (uint64, error) {
				created = d
				return 22, nil
			},
		}
		h := NewDonationHandler(testCfg, store, ngoAccountStore())

		c, _ := newTestContext(http.MethodPost, "/api/donations", `{"ngo":7,"amount":100,"anonymous":true}`)
		asUser(c, 3, model.RoleUser)
		if err := h.Create(c); err != nil {
			t.Fatalf("Create: %v", err)
		}
		if created.DonorName != "Anonymous" {
			t.Errorf("donor name = %q, want Anonymous", created.DonorName)
		}
		if !created.Anonymous {
			t.Error("anonymous flag not stored")
		}
	})
}

func pendingDonation() model.Donation {
	return model.Donation{
		ID: 21, DonorID: 3, RecipientID: 7, DonorName: "Test User",
		Amount: 500, Currency: "INR", Status: model.PaymentPending,
		OrderRef: "order_123", Purpose: "general",
	}
}

func TestDonationVerify(t *testing.T) {
	t.Run("missing provider fields", func(t *testing.T) {
		h := NewDonationHandler(testCfg, &mockDonationStore{}, ngoAccountStore())
		c, rec := newTestContext(http.MethodPost, "/api/donations/verify", `{"orderId":"order_123"}`)
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		store := &mockDonationStore{
			getByOrderRef: func(context.Context, string) (model.Donation, error) {
				return model.Donation{}, repository.ErrNotFound
			},
		}
		h := NewDonationHandler(testCfg, store, ngoAccountStore())

		c, rec := newTestContext(http.MethodPost, "/api/donations/verify",
			`{"orderId":"order_x","paymentId":"pay_1","signature":"sig"}`)
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		wantMessage(t, rec, http.StatusNotFound, "Donation not found")
	})

	t.Run("bad signature with secret configured", func(t *testing.T) {
		cfg := testCfg
		cfg.PaymentSecret = "webhook-secret"
		store := &mockDonationStore{
			getByOrderRef: func(context.Context, string) (model.Donation, error) { return pendingDonation(), nil },
			markCompleted: func(context.Context, string, string, string) (model.Donation, error) {
				t.Error("MarkCompleted called despite bad signature")
				return model.Donation{}, nil
			},
		}
		h := NewDonationHandler(cfg, store, ngoAccountStore())

		c, rec := newTestContext(http.MethodPost, "/api/donations/verify",
			`{"orderId":"order_123","paymentId":"pay_1","signature":"forged"}`)
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		wantMessage(t, rec, http.StatusBadRequest, "Payment signature verification failed")
	})

	t.Run("valid signature completes and publishes", func(t *testing.T) {
		cfg := testCfg
		cfg.PaymentSecret = "webhook-secret"
		sig := utils.PaymentSignature(cfg.PaymentSecret, "order_123", "pay_1")

		store := &mockDonationStore{
			getByOrderRef: func(context.Context, string) (model.Donation, error) { return pendingDonation(), nil },
			markCompleted: func(_ context.Context, orderRef, paymentRef, signature string) (model.Donation, error) {
				d := pendingDonation()
				d.Status = model.PaymentCompleted
				d.PaymentRef = paymentRef
				d.Signature = signature
				return d, nil
			},
		}
		h := NewDonationHandler(cfg, store, ngoAccountStore())
		events := make(chan queue.DonationCompletedEvent, 1)
		h.PublishCompleted = func(_ context.Context, ev queue.DonationCompletedEvent) error {
			events <- ev
			return nil
		}

		c, rec := newTestContext(http.MethodPost, "/api/donations/verify",
			`{"orderId":"order_123","paymentId":"pay_1","signature":"`+sig+`"}`)
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		wantMessage(t, rec, http.StatusOK, "Donation verified successfully")

		select {
		case ev := <-events:
			if ev.OrderRef != "order_123" || ev.Amount != 500 || ev.RecipientID != 7 {
				t.Errorf("unexpected event: %+v", ev)
			}
		case <-time.After(time.Second):
			t.Error("no event published on completion")
		}
	})

	t.Run("already verified", func(t *testing.T) {
		store := &mockDonationStore{
			getByOrderRef: func(context.Context, string) (model.Donation, error) {
				d := pendingDonation()
				d.Status = model.PaymentCompleted
				return d, nil
			},
		}
		h := NewDonationHandler(testCfg, store, ngoAccountStore())

		c, rec := newTestContext(http.MethodPost, "/api/donations/verify",
			`{"orderId":"order_123","paymentId":"pay_1","signature":"sig"}`)
		if err := h.Verify(c); err != nil {
			t.Fatalf("Verify: %v", err)
		}
		wantMessage(t, rec, http.StatusBadRequest, "Donation already verified")
	})
}

func TestMyDonationsTotalsCompletedOnly(t *testing.T) {
	store := &mockDonationStore{
		byDonor: func(context.Context, uint64) ([]model.Donation, error) {
			return []model.Donation{
				{ID: 1, Amount: 100, Status: model.PaymentCompleted},
				{ID: 2, Amount: 250, Status: model.PaymentCompleted},
				{ID: 3, Amount: 999, Status: model.PaymentPending},
			}, nil
		},
	}
	h := NewDonationHandler(testCfg, store, ngoAccountStore())

	c, rec := newTestContext(http.MethodGet, "/api/donations/my/donated", "")
	asUser(c, 3, model.RoleUser)
	if err := h.MyDonations(c); err != nil {
		t.Fatalf("MyDonations: %v", err)
	}
	body := decodeBody(t, rec)
	if body["totalDonated"].(float64) != 350 {
		t.Errorf("totalDonated = %v, want 350 (pending excluded)", body["totalDonated"])
	}
	if body["count"].(float64) != 3 {
		t.Errorf("count = %v, want 3", body["count"])
	}
}

func TestMonthlyTotals(t *testing.T) {
	jan := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)
	donations := []model.Donation{
		{Amount: 100, CreatedAt: jan},
		{Amount: 50, CreatedAt: jan.AddDate(0, 0, 20)},
		{Amount: 75, CreatedAt: feb},
	}
	got := monthlyTotals(donations)
	if got["January 2026"] != 150 {
		t.Errorf("January 2026 = %v, want 150", got["January 2026"])
	}
	if got["February 2026"] != 75 {
		t.Errorf("February 2026 = %v, want 75", got["February 2026"])
	}
	if len(got) != 2 {
		t.Errorf("bucket count = %d, want 2", len(got))
	}
}

func TestDonationGetOneAccess(t *testing.T) {
	store := &mockDonationStore{
		getByID: func(context.Context, uint64) (model.Donation, error) { return pendingDonation(), nil },
	}
	h := NewDonationHandler(testCfg, store, ngoAccountStore())

	tests := []struct {
		name       string
		accountID  uint64
		role       string
		wantStatus int
	}{
		{"donor may read", 3, model.RoleUser, http.StatusOK},
		{"recipient may read", 7, model.RoleNGO, http.StatusOK},
		{"admin may read", 50, model.RoleAdmin, http.StatusOK},
		{"stranger may not", 42, model.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodGet, "/api/donations/21", "")
			c.SetParamNames("id")
			c.SetParamValues("21")
			asUser(c, tt.accountID, tt.role)
			if err := h.GetOne(c); err != nil {
				t.Fatalf("GetOne: %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

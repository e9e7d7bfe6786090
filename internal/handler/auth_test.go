package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/tanvichauhan7/fostertails/internal/config"
	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/repository"
	"github.com/tanvichauhan7/fostertails/internal/utils"
)

type mockAccountStore struct {
	create         func(ctx context.Context, name, email, password, phone, role string, cost int) (uint64, error)
	getByEmail     func(ctx context.Context, email string) (model.Account, error)
	getByID        func(ctx context.Context, id uint64) (model.Account, error)
	updateProfile  func(ctx context.Context, id uint64, p repository.ProfileUpdate) error
	updatePassword func(ctx context.Context, id uint64, password string, cost int) error
	petRelations   func(ctx context.Context, id uint64) (posted, fostered, adopted []uint64, err error)
}

func (m *mockAccountStore) Create(ctx context.Context, name, email, password, phone, role string, cost int) (uint64, error) {
	return m.create(ctx, name, email, password, phone, role, cost)
}
func (m *mockAccountStore) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockAccountStore) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return m.getByID(ctx, id)
}
func (m *mockAccountStore) UpdateProfile(ctx context.Context, id uint64, p repository.ProfileUpdate) error {
	return m.updateProfile(ctx, id, p)
}
func (m *mockAccountStore) UpdatePassword(ctx context.Context, id uint64, password string, cost int) error {
	return m.updatePassword(ctx, id, password, cost)
}
func (m *mockAccountStore) PetRelations(ctx context.Context, id uint64) ([]uint64, []uint64, []uint64, error) {
	return m.petRelations(ctx, id)
}

var testCfg = config.Config{
	Env:            "dev",
	JWTSecret:      "test-secret",
	SessionTTLDays: 7,
	BcryptCost:     4,
}

func TestRegister(t *testing.T) {
	stored := model.Account{ID: 1, Name: "Asha", Email: "asha@example.com", Role: model.RoleUser}
	store := &mockAccountStore{
		create: func(_ context.Context, name, email, _, _, role string, _ int) (uint64, error) {
			if role != model.RoleUser {
				t.Errorf("role defaulted to %q, want user", role)
			}
			return 1, nil
		},
		getByID: func(_ context.Context, id uint64) (model.Account, error) { return stored, nil },
	}
	h := NewAuthHandler(testCfg, store)

	c, rec := newTestContext(http.MethodPost, "/api/auth/register",
		`{"name":"Asha","email":"asha@example.com","password":"secret123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	wantMessage(t, rec, http.StatusCreated, "Registered successfully")

	cookieSet := false
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "token" && ck.Value != "" && ck.HttpOnly {
			cookieSet = true
		}
	}
	if !cookieSet {
		t.Error("session cookie not set on register")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := &mockAccountStore{
		create: func(context.Context, string, string, string, string, string, int) (uint64, error) {
			return 0, repository.ErrEmailExists
		},
	}
	h := NewAuthHandler(testCfg, store)

	c, rec := newTestContext(http.MethodPost, "/api/auth/register",
		`{"name":"Asha","email":"asha@example.com","password":"secret123"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("Register: %v", err)
	}
	wantMessage(t, rec, http.StatusBadRequest, "Email already registered")
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(testCfg, &mockAccountStore{})
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"a@b.com","password":"secret123"}`},
		{"bad email", `{"name":"A","email":"nope","password":"secret123"}`},
		{"short password", `{"name":"A","email":"a@b.com","password":"abc"}`},
		{"bad role", `{"name":"A","email":"a@b.com","password":"secret123","role":"admin"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext(http.MethodPost, "/api/auth/register", tt.body)
			if err := h.Register(c); err != nil {
				t.Fatalf("Register: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("secret123", 4)
	if err != nil {
		t.Fatal(err)
	}
	stored := model.Account{ID: 3, Email: "asha@example.com", PasswordHash: hash, Role: model.RoleUser}
	store := &mockAccountStore{
		getByEmail: func(_ context.Context, email string) (model.Account, error) {
			if email != "asha@example.com" {
				return model.Account{}, repository.ErrNotFound
			}
			return stored, nil
		},
	}
	h := NewAuthHandler(testCfg, store)

	t.Run("success", func(t *testing.T) {
		c, rec := newTestContext(http.MethodPost, "/api/auth/login",
			`{"email":"Asha@Example.com","password":"secret123"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("Login: %v", err)
		}
		wantMessage(t, rec, http.StatusOK, "Logged in successfully")
	})

	t.Run("wrong password", func(t *testing.T) {
		c, rec := newTestContext(http.MethodPost, "/api/auth/login",
			`{"email":"asha@example.com","password":"wrong-pass"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("Login: %v", err)
		}
		wantMessage(t, rec, http.StatusUnauthorized, "Invalid credentials")
	})

	t.Run("unknown email", func(t *testing.T) {
		c, rec := newTestContext(http.MethodPost, "/api/auth/login",
			`{"email":"ghost@example.com","password":"secret123"}`)
		if err := h.Login(c); err != nil {
			t.Fatalf("Login: %v", err)
		}
		wantMessage(t, rec, http.StatusUnauthorized, "Invalid credentials")
	})
}

func TestMeIncludesRelations(t *testing.T) {
	store := &mockAccountStore{
		petRelations: func(context.Context, uint64) ([]uint64, []uint64, []uint64, error) {
			return []uint64{10, 11}, []uint64{12}, nil, nil
		},
	}
	h := NewAuthHandler(testCfg, store)

	c, rec := newTestContext(http.MethodGet, "/api/auth/me", "")
	asUser(c, 3, model.RoleUser)
	if err := h.Me(c); err != nil {
		t.Fatalf("Me: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	user, _ := body["user"].(map[string]any)
	if user == nil {
		t.Fatalf("no user in body: %s", rec.Body.String())
	}
	if posted, _ := user["petsPosted"].([]any); len(posted) != 2 {
		t.Errorf("petsPosted = %v, want 2 entries", user["petsPosted"])
	}
	if fostered, _ := user["petsFostered"].([]any); len(fostered) != 1 {
		t.Errorf("petsFostered = %v, want 1 entry", user["petsFostered"])
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	hash, err := utils.HashPassword("old-pass1", 4)
	if err != nil {
		t.Fatal(err)
	}
	store := &mockAccountStore{
		getByID: func(_ context.Context, id uint64) (model.Account, error) {
			return model.Account{ID: id, PasswordHash: hash}, nil
		},
		updatePassword: func(context.Context, uint64, string, int) error {
			t.Error("UpdatePassword called despite wrong current password")
			return nil
		},
	}
	h := NewAuthHandler(testCfg, store)

	c, rec := newTestContext(http.MethodPut, "/api/auth/change-password",
		`{"oldPassword":"not-it","newPassword":"new-pass1"}`)
	asUser(c, 3, model.RoleUser)
	if err := h.ChangePassword(c); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	wantMessage(t, rec, http.StatusBadRequest, "Current password is incorrect")
}

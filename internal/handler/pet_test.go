package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/tanvichauhan7/fostertails/internal/model"
	"github.com/tanvichauhan7/fostertails/internal/queue"
	"github.com/tanvichauhan7/fostertails/internal/repository"
)

type mockPetStore struct {
	create            func(ctx context.Context, p model.Pet) (uint64, error)
	getByID           func(ctx context.Context, id uint64) (model.Pet, error)
	incrementViews    func(ctx context.Context, id uint64) error
	update            func(ctx context.Context, id uint64, u repository.PetUpdate) error
	delete            func(ctx context.Context, id uint64) error
	search            func(ctx context.Context, q repository.PetSearchQuery) ([]model.Pet, int64, error)
	featured          func(ctx context.Context, limit int) ([]model.Pet, error)
	byOwner           func(ctx context.Context, ownerID uint64) ([]model.Pet, error)
	hasPendingRequest func(ctx context.Context, petID, requesterID uint64) (bool, error)
	createRequest     func(ctx context.Context, q model.PetRequest) (uint64, error)
	requestsForPet    func(ctx context.Context, petID uint64) ([]model.PetRequest, error)
	resolveRequest    func(ctx context.Context, petID, requestID uint64, status string) (model.PetRequest, error)
}

func (m *mockPetStore) Create(ctx context.Context, p model.Pet) (uint64, error) {
	return m.create(ctx, p)
}
func (m *mockPetStore) GetByID(ctx context.Context, id uint64) (model.Pet, error) {
	return m.getByID(ctx, id)
}
func (m *mockPetStore) IncrementViews(ctx context.Context, id uint64) error {
	if m.incrementViews == nil {
		return nil
	}
	return m.incrementViews(ctx, id)
}
func (m *mockPetStore) Update(ctx context.Context, id uint64, u repository.PetUpdate) error {
	return m.update(ctx, id, u)
}
func (m *mockPetStore) Delete(ctx context.Context, id uint64) error { return m.delete(ctx, id) }
func (m *mockPetStore) Search(ctx context.Context, q repository.PetSearchQuery) ([]model.Pet, int64, error) {
	return m.search(ctx, q)
}
func (m *mockPetStore) Featured(ctx context.Context, limit int) ([]model.Pet, error) {
	return m.featured(ctx, limit)
}
func (m *mockPetStore) ByOwner(ctx context.Context, ownerID uint64) ([]model.Pet, error) {
	return m.byOwner(ctx, ownerID)
}
func (m *mockPetStore) HasPendingRequest(ctx context.Context, petID, requesterID uint64) (bool, error) {
	return m.hasPendingRequest(ctx, petID, requesterID)
}
func (m *mockPetStore) CreateRequest(ctx context.Context, q model.PetRequest) (uint64, error) {
	return m.createRequest(ctx, q)
}
func (m *mockPetStore) RequestsForPet(ctx context.Context, petID uint64) ([]model.PetRequest, error) {
	if m.requestsForPet == nil {
		return nil, nil
	}
	return m.requestsForPet(ctx, petID)
}
func (m *mockPetStore) ResolveRequest(ctx context.Context, petID, requestID uint64, status string) (model.PetRequest, error) {
	return m.resolveRequest(ctx, petID, requestID, status)
}

func availableDog(owner uint64) model.Pet {
	return model.Pet{
		ID: 10, Name: "Bruno", Species: "dog", Breed: "Labrador",
		Description: "A friendly lab looking for a home", City: "Pune",
		Status: model.StatusAvailable, AvailableFor: "both", PostedBy: owner,
		Urgency: "medium",
	}
}

func TestPetList(t *testing.T) {
	store := &mockPetStore{
		search: func(_ context.Context, q repository.PetSearchQuery) ([]model.Pet, int64, error) {
			if q.Species != "dog" || q.City != "pune" {
				t.Errorf("filters not forwarded: %+v", q)
			}
			if q.Page != 2 || q.PageSize != 5 {
				t.Errorf("pagination not forwarded: page=%d size=%d", q.Page, q.PageSize)
			}
			return []model.Pet{availableDog(1)}, 11, nil
		},
	}
	h := NewPetHandler(testCfg, store)

	c, rec := newTestContext(http.MethodGet, "/api/pets?species=dog&city=pune&page=2&limit=5", "")
	if err := h.List(c); err != nil {
		t.Fatalf("List: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["total"].(float64) != 11 {
		t.Errorf("total = %v, want 11", body["total"])
	}
	if body["totalPages"].(float64) != 3 {
		t.Errorf("totalPages = %v, want 3", body["totalPages"])
	}
	if body["currentPage"].(float64) != 2 {
		t.Errorf("currentPage = %v, want 2", body["currentPage"])
	}
	if body["count"].(float64) != 1 {
		t.Errorf("count = %v, want 1", body["count"])
	}
}

func TestPetGetOneNotFound(t *testing.T) {
	store := &mockPetStore{
		getByID: func(context.Context, uint64) (model.Pet, error) {
			return model.Pet{}, repository.ErrNotFound
		},
	}
	h := NewPetHandler(testCfg, store)

	c, rec := newTestContext(http.MethodGet, "/api/pets/99", "")
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.GetOne(c); err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	wantMessage(t, rec, http.StatusNotFound, "Pet not found")
}

func TestPetGetOneBumpsViews(t *testing.T) {
	bumped := false
	store := &mockPetStore{
		getByID: func(_ context.Context, id uint64) (model.Pet, error) {
			p := availableDog(1)
			p.Views = 4
			return p, nil
		},
		incrementViews: func(_ context.Context, id uint64) error {
			bumped = true
			return nil
		},
	}
	h := NewPetHandler(testCfg, store)

	c, rec := newTestContext(http.MethodGet, "/api/pets/10", "")
	c.SetParamNames("id")
	c.SetParamValues("10")
	if err := h.GetOne(c); err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	if !bumped {
		t.Error("view counter not incremented")
	}
	body := decodeBody(t, rec)
	pet := body["pet"].(map[string]any)
	if pet["views"].(float64) != 5 {
		t.Errorf("views = %v, want 5", pet["views"])
	}
}

func TestPetUpdateForbiddenForStranger(t *testing.T) {
	store := &mockPetStore{
		getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
		update: func(context.Context, uint64, repository.PetUpdate) error {
			t.Error("Update called for a non-owner")
			return nil
		},
	}
	h := NewPetHandler(testCfg, store)

	c, rec := newTestContext(http.MethodPut, "/api/pets/10", `{"name":"Rex"}`)
	c.SetParamNames("id")
	c.SetParamValues("10")
	asUser(c, 2, model.RoleUser) // not the owner
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	wantMessage(t, rec, http.StatusForbidden, "You are not authorized to update this pet listing")
}

func TestPetUpdateAllowedForAdmin(t *testing.T) {
	updated := false
	store := &mockPetStore{
		getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
		update: func(_ context.Context, _ uint64, u repository.PetUpdate) error {
			updated = true
			if u.Name == nil || *u.Name != "Rex" {
				t.Errorf("name not forwarded: %+v", u)
			}
			return nil
		},
	}
	h := NewPetHandler(testCfg, store)

	c, rec := newTestContext(http.MethodPut, "/api/pets/10", `{"name":"Rex"}`)
	c.SetParamNames("id")
	c.SetParamValues("10")
	asUser(c, 99, model.RoleAdmin)
	if err := h.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Code != http.StatusOK || !updated {
		t.Errorf("admin update failed: status=%d updated=%v", rec.Code, updated)
	}
}

func TestSubmitRequest(t *testing.T) {
	t.Run("pet not available", func(t *testing.T) {
		store := &mockPetStore{
			getByID: func(context.Context, uint64) (model.Pet, error) {
				p := availableDog(1)
				p.Status = model.StatusAdopted
				return p, nil
			},
		}
		h := NewPetHandler(testCfg, store)

		c, rec := newTestContext(http.MethodPost, "/api/pets/10/request",
			`{"requestType":"adoption"}`)
		c.SetParamNames("id")
		c.SetParamValues("10")
		asUser(c, 2, model.RoleUser)
		if err := h.SubmitRequest(c); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusBadRequest,
			"This pet is currently adopted and not accepting new requests")
	})

	t.Run("duplicate pending request", func(t *testing.T) {
		store := &mockPetStore{
			getByID:           func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
			hasPendingRequest: func(context.Context, uint64, uint64) (bool, error) { return true, nil },
		}
		h := NewPetHandler(testCfg, store)

		c, rec := newTestContext(http.MethodPost, "/api/pets/10/request",
			`{"requestType":"foster"}`)
		c.SetParamNames("id")
		c.SetParamValues("10")
		asUser(c, 2, model.RoleUser)
		if err := h.SubmitRequest(c); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusBadRequest, "You already have a pending request for this pet")
	})

	t.Run("contact phone defaults to caller's", func(t *testing.T) {
		var got model.PetRequest
		store := &mockPetStore{
			getByID:           func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
			hasPendingRequest: func(context.Context, uint64, uint64) (bool, error) { return false, nil },
			createRequest: func(_ context.Context, q model.PetRequest) (uint64, error) {
				got = q
				return 77, nil
			},
		}
		h := NewPetHandler(testCfg, store)

		c, rec := newTestContext(http.MethodPost, "/api/pets/10/request",
			`{"requestType":"foster","message":"I have a garden"}`)
		c.SetParamNames("id")
		c.SetParamValues("10")
		acct := asUser(c, 2, model.RoleUser)
		if err := h.SubmitRequest(c); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusOK, "Request submitted successfully")
		if got.ContactPhone != acct.Phone {
			t.Errorf("contact phone = %q, want caller's %q", got.ContactPhone, acct.Phone)
		}
		if got.PetID != 10 || got.RequesterID != 2 || got.RequestType != "foster" {
			t.Errorf("request not built from caller: %+v", got)
		}
	})

	t.Run("invalid request type", func(t *testing.T) {
		h := NewPetHandler(testCfg, &mockPetStore{})
		c, rec := newTestContext(http.MethodPost, "/api/pets/10/request",
			`{"requestType":"purchase"}`)
		c.SetParamNames("id")
		c.SetParamValues("10")
		asUser(c, 2, model.RoleUser)
		if err := h.SubmitRequest(c); err != nil {
			t.Fatalf("SubmitRequest: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestResolveRequest(t *testing.T) {
	t.Run("only the owner may resolve", func(t *testing.T) {
		store := &mockPetStore{
			getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
		}
		h := NewPetHandler(testCfg, store)

		c, rec := newTestContext(http.MethodPut, "/api/pets/10/request/5",
			`{"status":"approved"}`)
		c.SetParamNames("id", "requestId")
		c.SetParamValues("10", "5")
		asUser(c, 99, model.RoleAdmin) // even admins are not accepted here
		if err := h.ResolveRequest(c); err != nil {
			t.Fatalf("ResolveRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusForbidden, "You are not authorized to manage requests for this pet")
	})

	t.Run("approve publishes event", func(t *testing.T) {
		store := &mockPetStore{
			getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
			resolveRequest: func(_ context.Context, petID, requestID uint64, status string) (model.PetRequest, error) {
				return model.PetRequest{
					ID: requestID, PetID: petID, RequesterID: 2,
					RequestType: model.RequestAdoption, Status: status,
				}, nil
			},
		}
		h := NewPetHandler(testCfg, store)
		events := make(chan queue.RequestApprovedEvent, 1)
		h.PublishApproved = func(_ context.Context, ev queue.RequestApprovedEvent) error {
			events <- ev
			return nil
		}

		c, rec := newTestContext(http.MethodPut, "/api/pets/10/request/5",
			`{"status":"approved"}`)
		c.SetParamNames("id", "requestId")
		c.SetParamValues("10", "5")
		asUser(c, 1, model.RoleUser)
		if err := h.ResolveRequest(c); err != nil {
			t.Fatalf("ResolveRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusOK, "Request approved successfully")

		select {
		case ev := <-events:
			if ev.PetID != 10 || ev.RequesterID != 2 || ev.NewStatus != model.StatusAdopted {
				t.Errorf("unexpected event: %+v", ev)
			}
		case <-time.After(time.Second):
			t.Error("no event published on approval")
		}
	})

	t.Run("reject publishes nothing", func(t *testing.T) {
		store := &mockPetStore{
			getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
			resolveRequest: func(_ context.Context, petID, requestID uint64, status string) (model.PetRequest, error) {
				return model.PetRequest{ID: requestID, PetID: petID, Status: status}, nil
			},
		}
		h := NewPetHandler(testCfg, store)
		h.PublishApproved = func(context.Context, queue.RequestApprovedEvent) error {
			t.Error("event published on rejection")
			return nil
		}

		c, rec := newTestContext(http.MethodPut, "/api/pets/10/request/5",
			`{"status":"rejected"}`)
		c.SetParamNames("id", "requestId")
		c.SetParamValues("10", "5")
		asUser(c, 1, model.RoleUser)
		if err := h.ResolveRequest(c); err != nil {
			t.Fatalf("ResolveRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusOK, "Request rejected successfully")
	})

	t.Run("unknown request id", func(t *testing.T) {
		store := &mockPetStore{
			getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
			resolveRequest: func(context.Context, uint64, uint64, string) (model.PetRequest, error) {
				return model.PetRequest{}, repository.ErrNotFound
			},
		}
		h := NewPetHandler(testCfg, store)

		c, rec := newTestContext(http.MethodPut, "/api/pets/10/request/404",
			`{"status":"approved"}`)
		c.SetParamNames("id", "requestId")
		c.SetParamValues("10", "404")
		asUser(c, 1, model.RoleUser)
		if err := h.ResolveRequest(c); err != nil {
			t.Fatalf("ResolveRequest: %v", err)
		}
		wantMessage(t, rec, http.StatusNotFound, "Request not found")
	})
}

func TestPetCreateRequiresCity(t *testing.T) {
	h := NewPetHandler(testCfg, &mockPetStore{})

	c, rec := newTestContext(http.MethodPost, "/api/pets",
		`{"name":"Bruno","species":"dog","description":"A friendly lab looking for a home","availableFor":"both"}`)
	asUser(c, 1, model.RoleUser)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	wantMessage(t, rec, http.StatusBadRequest,
		"Please provide all required fields: name, species, description, city, and availableFor")
}

func TestPetCreateDefaults(t *testing.T) {
	var created model.Pet
	store := &mockPetStore{
		create: func(_ context.Context, p model.Pet) (uint64, error) {
			created = p
			return 10, nil
		},
		getByID: func(context.Context, uint64) (model.Pet, error) { return availableDog(1), nil },
	}
	h := NewPetHandler(testCfg, store)

	c, rec := newTestContext(http.MethodPost, "/api/pets",
		`{"name":"Bruno","species":"dog","description":"A friendly lab looking for a home","availableFor":"both","location":{"city":"Pune"},"temperament":["Calm","Friendly"]}`)
	asUser(c, 1, model.RoleUser)
	if err := h.Create(c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	if created.Breed != "Mixed breed" || created.Age != "unknown" || created.Size != "medium" || created.Urgency != "medium" {
		t.Errorf("defaults not applied: %+v", created)
	}
	if created.Status != model.StatusAvailable {
		t.Errorf("status = %q, want available", created.Status)
	}
	if created.PostedBy != 1 {
		t.Errorf("postedBy = %d, want caller", created.PostedBy)
	}
	if created.Temperament != "calm,friendly" {
		t.Errorf("temperament = %q, want normalized comma list", created.Temperament)
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tanvichauhan7/fostertails/internal/middleware"
	"github.com/tanvichauhan7/fostertails/internal/model"
)

// newTestContext builds an Echo context around a JSON request and a
// recorder, with the validator installed the way main wires it.
func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asUser attaches an authenticated account the way the session
// middleware would.
func asUser(c echo.Context, id uint64, role string) model.Account {
	acct := model.Account{ID: id, Name: "Test User", Email: "test@example.com", Phone: "9999999999", Role: role}
	middleware.SetAccount(c, acct)
	return acct
}

// decodeBody unmarshals the recorded JSON envelope.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v\n%s", err, rec.Body.String())
	}
	return body
}

// wantMessage asserts status code and envelope message.
func wantMessage(t *testing.T, rec *httptest.ResponseRecorder, status int, message string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if got, _ := body["message"].(string); got != message {
		t.Errorf("message = %q, want %q", got, message)
	}
}

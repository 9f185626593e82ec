package runtime

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mohammad-safakhou/opticqa/config"
)

func TestCheckAdminKey(t *testing.T) {
	plain := config.SecurityConfig{AdminKey: "letmein"}
	if !CheckAdminKey(plain, "letmein") {
		t.Fatalf("expected plain key to match")
	}
	if CheckAdminKey(plain, "letmeout") || CheckAdminKey(plain, "") {
		t.Fatalf("expected mismatch to fail")
	}

	hash, err := HashAdminKey("s3cret")
	if err != nil {
		t.Fatalf("HashAdminKey: %v", err)
	}
	hashed := config.SecurityConfig{AdminKey: "ignored", AdminKeyHash: hash}
	if !CheckAdminKey(hashed, "s3cret") {
		t.Fatalf("expected bcrypt match")
	}
	if CheckAdminKey(hashed, "ignored") {
		t.Fatalf("hash must take precedence over plain key")
	}

	if CheckAdminKey(config.SecurityConfig{}, "") {
		t.Fatalf("unconfigured gate must reject an empty key")
	}
}

func TestEchoAdminMiddleware(t *testing.T) {
	e := echo.New()
	handler := EchoAdminMiddleware(config.SecurityConfig{AdminKey: "letmein"})(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set(AdminKeyHeader, "letmein")
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("expected pass-through, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/documents", nil)
	err := handler(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

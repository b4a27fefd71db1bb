package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// newGatedEcho returns an Echo instance with the Basic Auth gate installed
// and a single handler that records whether it ran.
func newGatedEcho(t *testing.T, handlerRan *bool) *echo.Echo {
	t.Helper()

	creds, err := NewCredentials(testConfig("admin", "hunter2"))
	if err != nil {
		t.Fatalf("NewCredentials() error = %v", err)
	}

	e := echo.New()
	e.Use(BasicAuth(creds, "MLflow"))
	e.Any("/*", func(c echo.Context) error {
		*handlerRan = true
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func TestBasicAuth_MissingHeader(t *testing.T) {
	var handlerRan bool
	e := newGatedEcho(t, &handlerRan)

	req := httptest.NewRequest(http.MethodGet, "/api/2.0/mlflow/experiments/list", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="MLflow"` {
		t.Errorf("WWW-Authenticate = %q, want %q", got, `Basic realm="MLflow"`)
	}
	if handlerRan {
		t.Error("handler ran for an unauthenticated request")
	}
}

func TestBasicAuth_WrongScheme(t *testing.T) {
	var handlerRan bool
	e := newGatedEcho(t, &handlerRan)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Bearer some-token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if handlerRan {
		t.Error("handler ran for a non-Basic Authorization header")
	}
}

func TestBasicAuth_MalformedBase64(t *testing.T) {
	var handlerRan bool
	e := newGatedEcho(t, &handlerRan)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Authorization", "Basic not-base64!!!")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if handlerRan {
		t.Error("handler ran for a malformed Authorization header")
	}
}

func TestBasicAuth_WrongPassword(t *testing.T) {
	var handlerRan bool
	e := newGatedEcho(t, &handlerRan)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.SetBasicAuth("admin", "wrong")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if handlerRan {
		t.Error("handler ran despite invalid credentials")
	}
}

func TestBasicAuth_ValidCredentials(t *testing.T) {
	var handlerRan bool
	e := newGatedEcho(t, &handlerRan)

	req := httptest.NewRequest(http.MethodPost, "/api/2.0/mlflow/runs/create", http.NoBody)
	req.SetBasicAuth("admin", "hunter2")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if !handlerRan {
		t.Error("handler did not run for valid credentials")
	}
}

func TestBasicAuth_RealmQuoting(t *testing.T) {
	creds, err := NewCredentials(testConfig("admin", "hunter2"))
	if err != nil {
		t.Fatalf("NewCredentials() error = %v", err)
	}

	e := echo.New()
	e.Use(BasicAuth(creds, "Tracking Server"))
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="Tracking Server"` {
		t.Errorf("WWW-Authenticate = %q, want %q", got, `Basic realm="Tracking Server"`)
	}
}

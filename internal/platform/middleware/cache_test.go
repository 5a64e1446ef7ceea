package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestInMemoryCacheStore_SetGet(t *testing.T) {
	s := NewInMemoryCacheStore()
	s.Set("k", []byte("v"), time.Minute)

	got, ok := s.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v; want v, true", got, ok)
	}
}

func TestInMemoryCacheStore_Expiry(t *testing.T) {
	s := NewInMemoryCacheStore()
	s.Set("k", []byte("v"), -time.Second)

	if _, ok := s.Get("k"); ok {
		t.Error("expected expired entry to be absent")
	}
}

func TestInMemoryCacheStore_Delete(t *testing.T) {
	s := NewInMemoryCacheStore()
	s.Set("k", []byte("v"), time.Minute)
	s.Delete("k")
	if _, ok := s.Get("k"); ok {
		t.Error("expected deleted entry to be absent")
	}
}

func TestResponseCache_ServesFromStore(t *testing.T) {
	store := NewInMemoryCacheStore()
	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"code": "ABERCV"})
	}
	mw := ResponseCache(store, time.Minute)

	e := echo.New()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/reference/courts", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	}

	if calls != 1 {
		t.Errorf("handler called %d times, want 1 (second hit served from cache)", calls)
	}
}

func TestResponseCache_SkipsNonGET(t *testing.T) {
	store := NewInMemoryCacheStore()
	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}
	mw := ResponseCache(store, time.Minute)

	e := echo.New()
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reference/courts", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("handler called %d times, want 2", calls)
	}
}

package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/clubhub/internal/app/features/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogServerError_HTMX(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	req := httptest.NewRequest("POST", "/register", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	el.LogServerError(rec, req, "insert failed", errors.New("boom"), "Failed to submit registration. Please try again.", "/register")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if got := rec.Body.String(); got != "Failed to submit registration. Please try again.\n" {
		t.Errorf("body = %q", got)
	}
	entries := logs.FilterMessage("insert failed").All()
	if len(entries) != 1 || entries[0].Level != zap.ErrorLevel {
		t.Fatalf("expected one error log entry, got %+v", entries)
	}
	if entries[0].ContextMap()["path"] != "/register" {
		t.Errorf("path field = %v", entries[0].ContextMap()["path"])
	}
}

func TestLogBadRequest_HTMX(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	el := uierrors.NewErrorLogger(zap.New(core))

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()

	el.LogBadRequest(rec, req, "parse form failed", errors.New("bad"), "Invalid form data.", "/login")

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if logs.FilterLevelExact(zap.WarnLevel).Len() != 1 {
		t.Error("expected a warn entry")
	}
}

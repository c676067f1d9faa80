package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"melodi/internal/core"
	"melodi/internal/habits"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Test", "1").
		Data(map[string]int{"id": 7}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Header().Get("X-Test") != "1" {
		t.Errorf("custom header missing")
	}
	if w.Body.String() != "{\"id\":7}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d %q", w.Code, w.Body.String())
	}
}

func TestJSONResponseBuilder_EncodingFailure(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Data(map[string]any{"f": func() {}}).Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want 500", w.Code)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
		field  string
	}{
		{core.ErrBlankText, http.StatusUnprocessableEntity, CodeValidation, "text"},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity, CodeValidation, "amount"},
		{core.ErrInvalidType, http.StatusUnprocessableEntity, CodeValidation, "type"},
		{core.ErrNotFound, http.StatusNotFound, CodeNotFound, ""},
		{habits.ErrStaleTransition, http.StatusConflict, CodeConflict, ""},
		{fmt.Errorf("%w: %w", habits.ErrStaleTransition, core.ErrNotFound), http.StatusConflict, CodeConflict, ""},
		{fmt.Errorf("commit notes created: %w", errors.New("disk full")), http.StatusInternalServerError, CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			FromError(tt.err).Write(w)

			if w.Code != tt.status {
				t.Fatalf("status = %d, want %d", w.Code, tt.status)
			}
			var body ErrorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body.Error.Code != tt.code || body.Error.Field != tt.field {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestInternalErrorsDoNotLeakDetails(t *testing.T) {
	w := httptest.NewRecorder()
	FromError(errors.New("open /secret/path: permission denied")).Write(w)

	var body ErrorBody
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body.Error.Message != "internal error" {
		t.Errorf("message = %q", body.Error.Message)
	}
}

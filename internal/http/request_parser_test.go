package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  bool
		wantJSON bool
		key      string
		want     string
	}{
		{name: "json string", body: `{"text":"  halo  "}`, wantJSON: true, key: "text", want: "halo"},
		{name: "json number", body: `{"amount": 12.5}`, wantJSON: true, key: "amount", want: "12.5"},
		{name: "json bool", body: `{"proceed": true}`, wantJSON: true, key: "proceed", want: "true"},
		{name: "json missing key", body: `{"a":"b"}`, wantJSON: true, key: "text", want: ""},
		{name: "form", body: "desc=kopi&amount=12%2C5", key: "amount", want: "12,5"},
		{name: "control characters removed", body: `{"text":"a\u0000b\nc"}`, wantJSON: true, key: "text", want: "ab\nc"},
		{name: "empty body", body: "", key: "text", want: ""},
		{name: "invalid json", body: `{"text":`, wantErr: true},
		{name: "array body", body: `[1,2]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			p := NewRequestBodyParser(r)
			err := p.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestRequestBodyParser_BoolAndHas(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"proceed":true,"confirm":"yes","note":""}`))
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.Bool("proceed") || !p.Bool("confirm") || p.Bool("missing") {
		t.Errorf("Bool() mismatch")
	}
	if !p.Has("note") || p.Has("missing") {
		t.Errorf("Has() mismatch")
	}

	// Parse is idempotent.
	if err := p.Parse(); err != nil {
		t.Errorf("second Parse() error = %v", err)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := `{"text":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if err := NewRequestBodyParser(r).Parse(); err == nil {
		t.Fatal("oversized body should fail")
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodDelete, "/api/notes/42", nil)
	r.SetPathValue("id", "42")
	if id, err := pathID(r); err != nil || id != 42 {
		t.Errorf("pathID() = %d, %v", id, err)
	}

	r.SetPathValue("id", "abc")
	if _, err := pathID(r); err == nil {
		t.Error("non-numeric id should fail")
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  a\x01b\tc  "); got != "ab\tc" {
		t.Errorf("sanitizeInput() = %q", got)
	}
	if !strings.HasPrefix(generateRequestID(), "req_") {
		t.Error("request id prefix missing")
	}
}

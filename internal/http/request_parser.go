// This file implements utilities for reading request bodies and path
// parameters. Bodies may be JSON objects or form-encoded.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxBodyBytes bounds request bodies; notes are the largest payload.
const maxBodyBytes = 1 << 20

// RequestBodyParser handles JSON and form-encoded request bodies.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once and stores it for parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
		if p.err == nil && len(p.body) > maxBodyBytes {
			p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
		}
	}
	return p
}

// Parse decodes the body as a JSON object when it looks like one and as
// form values otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}
	if trimmed[0] == '[' {
		p.err = errors.New("request body must be an object")
		return p.err
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized, trimmed string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key is present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	return p.formData != nil && p.formData.Has(key)
}

// Bool reads a boolean value. Missing or unparseable values are false.
func (p *RequestBodyParser) Bool(key string) bool {
	return parseBool(p.Get(key))
}

// Decode unmarshals a JSON body into v. Form bodies are rejected.
func (p *RequestBodyParser) Decode(v any) error {
	if err := p.Parse(); err != nil {
		return err
	}
	if p.jsonData == nil {
		return errors.New("expected a JSON body")
	}
	if err := json.Unmarshal(p.body, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// pathID reads the {id} path value.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// parseBody parses the request body or writes a 400 response. It reports
// whether the handler should continue.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return nil, false
	}
	return p, true
}

// requireID reads the {id} path value or writes a 400 response.
func requireID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := pathID(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return 0, false
	}
	return id, true
}

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

	"fintrack/internal/core"
)

var errBadBody = errors.New("malformed request body")

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its fields as strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]interface{}
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadBody, p.err)
	}
	return p
}

// Parse decodes the body as JSON when it looks like an object, otherwise as
// form values.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	switch {
	case trimmed == "":
		p.formData = url.Values{}
	case trimmed[0] == '{':
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadBody, err)
		}
	default:
		var err error
		if p.formData, err = url.ParseQuery(trimmed); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadBody, err)
		}
	}
	return p.err
}

// Get returns a trimmed string value from the parsed data (JSON or form).
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

// isJSON reports if the parsed content was JSON.
func (p *RequestBodyParser) isJSON() bool {
	return p.jsonData != nil
}

// Draft collects the transaction form fields.
func (p *RequestBodyParser) Draft() core.Draft {
	return core.Draft{
		Type:        p.Get("type"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
	}
}

func stringValue(v interface{}) string {
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

// parseDraft reads a transaction draft from the request body.
func parseDraft(w http.ResponseWriter, r *http.Request) (core.Draft, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return core.Draft{}, err
	}
	return p.Draft(), nil
}

// parseValue reads one named field from the request body.
func parseValue(w http.ResponseWriter, r *http.Request, key string) (string, error) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		return "", err
	}
	return p.Get(key), nil
}

// filterFromQuery builds a filter from month/year query parameters. ok is
// false when neither parameter is present.
func filterFromQuery(q url.Values) (f core.Filter, ok bool, err error) {
	if !q.Has("month") && !q.Has("year") {
		return core.Filter{}, false, nil
	}
	f, err = core.ParseFilter(q.Get("month"), q.Get("year"))
	return f, true, err
}

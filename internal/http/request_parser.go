// Package http exposes the fintrack services as a JSON API.
//
// This file implements parsing and validation of query strings and request
// bodies shared by the handlers.

package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"fintrack/internal/core"
)

// maxBodyBytes bounds every request body.
const maxBodyBytes = 1 << 20

// queryInt reads an optional integer parameter. ok is false when absent.
func queryInt(query url.Values, name string) (value int, ok bool, err error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, core.NewValidationError(name, "value is not a valid integer")
	}
	return n, true, nil
}

func queryDate(query url.Values, name string) (*core.Date, error) {
	v := strings.TrimSpace(query.Get(name))
	if v == "" {
		return nil, nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return nil, core.NewValidationError(name, "value is not a valid date (YYYY-MM-DD)")
	}
	return &d, nil
}

// ParsePeriod extracts the optional month and year filters.
func ParsePeriod(query url.Values) (core.Period, error) {
	var p core.Period
	var err error
	if p.Month, _, err = queryInt(query, "month"); err != nil {
		return core.Period{}, err
	}
	if p.Year, _, err = queryInt(query, "year"); err != nil {
		return core.Period{}, err
	}
	if err := p.Validate(); err != nil {
		return core.Period{}, err
	}
	return p, nil
}

// ParseYear extracts the optional year parameter; 0 means unset.
func ParseYear(query url.Values) (int, error) {
	year, _, err := queryInt(query, "year")
	if err != nil {
		return 0, err
	}
	if year < 0 {
		return 0, core.NewValidationError("year", "must not be negative")
	}
	return year, nil
}

// ParseListQuery extracts pagination and filters for list endpoints.
func ParseListQuery(query url.Values) (core.ListFilter, core.Page, error) {
	page := core.DefaultPage()
	if skip, ok, err := queryInt(query, "skip"); err != nil {
		return core.ListFilter{}, core.Page{}, err
	} else if ok {
		page.Skip = skip
	}
	if limit, ok, err := queryInt(query, "limit"); err != nil {
		return core.ListFilter{}, core.Page{}, err
	} else if ok {
		page.Limit = limit
	}
	if err := page.Validate(); err != nil {
		return core.ListFilter{}, core.Page{}, err
	}

	period, err := ParsePeriod(query)
	if err != nil {
		return core.ListFilter{}, core.Page{}, err
	}

	filter := core.ListFilter{
		Category: sanitizeInput(query.Get("category")),
		Search:   sanitizeInput(query.Get("search")),
		Period:   period,
	}
	if filter.StartDate, err = queryDate(query, "start_date"); err != nil {
		return core.ListFilter{}, core.Page{}, err
	}
	if filter.EndDate, err = queryDate(query, "end_date"); err != nil {
		return core.ListFilter{}, core.Page{}, err
	}
	if err := filter.Validate(); err != nil {
		return core.ListFilter{}, core.Page{}, err
	}
	return filter, page, nil
}

// parseID reads the numeric {id} route variable.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError("id", "value is not a valid integer")
	}
	return id, nil
}

// decodeJSON decodes a bounded JSON body into v. Syntax and type errors are
// reported as validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return core.NewValidationError("body", "could not be read")
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return core.NewValidationError("body", "field required")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return jsonError(err)
	}
	return nil
}

func jsonError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return core.NewValidationError(typeErr.Field, "invalid type")
	}
	if core.IsValidation(err) {
		return err
	}
	return core.NewValidationError("body", "%s", strings.TrimPrefix(err.Error(), "json: "))
}

// RequestBodyParser reads a body that may be JSON or form encoded, as the
// login endpoint accepts both.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
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

	if strings.HasPrefix(p.contentType, "application/json") || trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
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

// sanitizeInput removes control characters other than tab, newline and
// carriage return. Surrounding whitespace is part of the value.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

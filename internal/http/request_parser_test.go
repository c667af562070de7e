package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestParseListQuery(t *testing.T) {
	tests := []struct {
		name      string
		query     url.Values
		wantErr   string
		wantPage  core.Page
		checkFunc func(t *testing.T, f core.ListFilter)
	}{
		{
			name:     "defaults",
			query:    url.Values{},
			wantPage: core.Page{Skip: 0, Limit: 100},
		},
		{
			name: "all filters",
			query: url.Values{
				"skip": {"10"}, "limit": {"5"}, "category": {" Food "}, "start_date": {"2024-01-01"},
				"end_date": {"2024-01-31"}, "month": {"1"}, "year": {"2024"}, "search": {"cof"},
			},
			wantPage: core.Page{Skip: 10, Limit: 5},
			checkFunc: func(t *testing.T, f core.ListFilter) {
				if f.Category != "Food" || f.Search != "cof" || f.Month != 1 || f.Year != 2024 {
					t.Errorf("filter = %+v", f)
				}
				if f.StartDate == nil || f.StartDate.String() != "2024-01-01" {
					t.Errorf("StartDate = %v", f.StartDate)
				}
				if f.EndDate == nil || f.EndDate.String() != "2024-01-31" {
					t.Errorf("EndDate = %v", f.EndDate)
				}
			},
		},
		{
			name:     "zero limit is allowed",
			query:    url.Values{"limit": {"0"}},
			wantPage: core.Page{Skip: 0, Limit: 0},
		},
		{name: "non-integer skip", query: url.Values{"skip": {"abc"}}, wantErr: "skip"},
		{name: "negative skip", query: url.Values{"skip": {"-1"}}, wantErr: "skip"},
		{name: "negative limit", query: url.Values{"limit": {"-5"}}, wantErr: "limit"},
		{name: "month out of range", query: url.Values{"month": {"13"}}, wantErr: "month"},
		{name: "non-integer year", query: url.Values{"year": {"20x4"}}, wantErr: "year"},
		{name: "malformed start date", query: url.Values{"start_date": {"2024/01/01"}}, wantErr: "start_date"},
		{name: "malformed end date", query: url.Values{"end_date": {"yesterday"}}, wantErr: "end_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter, page, err := ParseListQuery(tt.query)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error mentioning %q", tt.wantErr)
				}
				if !core.IsValidation(err) {
					t.Errorf("error %v is not a validation error", err)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseListQuery() error = %v", err)
			}
			if page != tt.wantPage {
				t.Errorf("page = %+v, want %+v", page, tt.wantPage)
			}
			if tt.checkFunc != nil {
				tt.checkFunc(t, filter)
			}
		})
	}
}

func TestParsePeriodAndYear(t *testing.T) {
	p, err := ParsePeriod(url.Values{"month": {"6"}, "year": {"2023"}})
	if err != nil || p.Month != 6 || p.Year != 2023 {
		t.Errorf("ParsePeriod() = %+v, %v", p, err)
	}
	if _, err := ParsePeriod(url.Values{"month": {"0x"}}); err == nil {
		t.Error("expected error for malformed month")
	}

	year, err := ParseYear(url.Values{})
	if err != nil || year != 0 {
		t.Errorf("ParseYear() = %d, %v; want 0 for absent", year, err)
	}
	if _, err := ParseYear(url.Values{"year": {"-1"}}); err == nil {
		t.Error("expected error for negative year")
	}
}

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantUser    string
		wantPass    string
		wantErr     bool
	}{
		{
			name:        "json body",
			body:        `{"username":"alice","password":"secret1"}`,
			contentType: "application/json",
			wantUser:    "alice",
			wantPass:    "secret1",
		},
		{
			name:        "form body",
			body:        "username=alice&password=secret1",
			contentType: "application/x-www-form-urlencoded",
			wantUser:    "alice",
			wantPass:    "secret1",
		},
		{
			name:     "json without content type",
			body:     `{"username":"bob","password":123456}`,
			wantUser: "bob",
			wantPass: "123456",
		},
		{
			name:        "empty body",
			body:        "",
			contentType: "application/json",
		},
		{
			name:        "broken json",
			body:        `{"username":`,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			p := NewRequestBodyParser(httptest.NewRecorder(), req)
			err := p.Parse()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got := p.Get("username"); got != tt.wantUser {
				t.Errorf("username = %q, want %q", got, tt.wantUser)
			}
			if got := p.Get("password"); got != tt.wantPass {
				t.Errorf("password = %q, want %q", got, tt.wantPass)
			}
		})
	}
}

func TestPatchFields(t *testing.T) {
	fields := patchFields{
		"amount":         []byte(`"12.30"`),
		"description":    []byte(`null`),
		"payment_method": []byte(`"Cash"`),
	}
	patch, err := fields.expensePatch()
	if err != nil {
		t.Fatalf("expensePatch() error = %v", err)
	}
	if patch.Title.Set || patch.Category.Set || patch.Date.Set {
		t.Errorf("absent keys must stay unset: %+v", patch)
	}
	if !patch.Amount.Set || patch.Amount.Value.Cents != 1230 {
		t.Errorf("Amount = %+v", patch.Amount)
	}
	if !patch.Description.Set || patch.Description.Value != nil {
		t.Errorf("explicit null should clear description: %+v", patch.Description)
	}
	if !patch.PaymentMethod.Set || *patch.PaymentMethod.Value != "Cash" {
		t.Errorf("PaymentMethod = %+v", patch.PaymentMethod)
	}

	if _, err := (patchFields{"title": []byte(`null`)}).incomePatch(); !core.IsValidation(err) {
		t.Errorf("null title error = %v, want validation error", err)
	}
	if _, err := (patchFields{"date": []byte(`"05/01/2024"`)}).incomePatch(); !core.IsValidation(err) {
		t.Errorf("bad date error = %v, want validation error", err)
	}

	empty, err := patchFields{}.incomePatch()
	if err != nil || !empty.IsEmpty() {
		t.Errorf("empty patch = %+v, %v", empty, err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := map[string]string{
		"Fo\x00od":    "Food",
		"  Food\t ":   "  Food\t ",
		" ":           " ",
		"a\x1bb\r\nc": "ab\r\nc",
	}
	for in, want := range tests {
		if got := sanitizeInput(in); got != want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", in, got, want)
		}
	}
}

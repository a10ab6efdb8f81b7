package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestConvertToCents(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{150.5, 15050},
		{99.9, 9990},
		{0.01, 1},
		{19.999, 2000},
	}
	for _, tt := range tests {
		if got := convertToCents(tt.in); got != tt.want {
			t.Errorf("convertToCents(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{15050, "150,50"},
		{5, "0,05"},
		{-1234, "-12,34"},
	}
	for _, tt := range tests {
		if got := formatCents(tt.in); got != tt.want {
			t.Errorf("formatCents(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidateImageURL(t *testing.T) {
	valid := []string{"", "/uploads/logo.png", "https://cdn.example.com/a.png", "http://localhost:3001/x.jpg"}
	for _, raw := range valid {
		if err := validateImageURL("logoUrl", raw); err != nil {
			t.Errorf("validateImageURL(%q) error = %v, want nil", raw, err)
		}
	}

	invalid := []string{"//evil.com/x.png", "javascript:alert(1)", "ftp://host/file", "logo.png"}
	for _, raw := range invalid {
		if err := validateImageURL("logoUrl", raw); err == nil {
			t.Errorf("validateImageURL(%q) error = nil, want error", raw)
		}
	}
}

func TestPageParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query     string
		wantPage  int
		wantLimit int
	}{
		{"", 1, 20},
		{"?page=3&limit=50", 3, 50},
		{"?page=-1&limit=500", 1, 20},
		{"?page=abc&limit=0", 1, 20},
		{"?page=9223372036854775807&limit=50", maxPage, 50},
	}
	for _, tt := range tests {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("GET", "/api/students"+tt.query, nil)

		page, limit := pageParams(c, 20)
		if page != tt.wantPage || limit != tt.wantLimit {
			t.Errorf("pageParams(%q) = %d, %d; want %d, %d", tt.query, page, limit, tt.wantPage, tt.wantLimit)
		}
	}
}

package token

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestMintAndVerify(t *testing.T) {
	m, err := NewManager("test-token-secret-for-testing-0123456789", 0)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := m.Mint("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	userID, err := m.Verify(signed)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "507f1f77bcf86cd799439011" {
		t.Errorf("user id: got %q", userID)
	}
}

func TestNewManager_EmptySecret(t *testing.T) {
	if _, err := NewManager("", 0); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestVerify_Malformed(t *testing.T) {
	m, err := NewManager("test-token-secret-for-testing-0123456789", 0)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	for _, raw := range []string{"", "   ", "not-a-jwt", "a.b.c"} {
		if _, err := m.Verify(raw); err != ErrInvalidToken {
			t.Errorf("Verify(%q): expected ErrInvalidToken, got %v", raw, err)
		}
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	a, _ := NewManager("secret-a-0123456789-0123456789-01", 0)
	b, _ := NewManager("secret-b-0123456789-0123456789-01", 0)

	signed, err := a.Mint("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	if _, err := b.Verify(signed); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	m, err := NewManager("test-token-secret-for-testing-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	issued := time.Now().Add(-48 * time.Hour)
	m.now = func() time.Time { return issued }
	signed, err := m.Mint("507f1f77bcf86cd799439011")
	if err != nil {
		t.Fatalf("Mint failed: %v", err)
	}

	m.now = time.Now
	if _, err := m.Verify(signed); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestFromHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{"bearer", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"missing", "", "", false},
		{"basic", "Basic dXNlcjpwYXNz", "", false},
		{"bearer empty", "Bearer ", "", false},
		{"bearer padded", "Bearer   abc  ", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, ok := FromHeader(r)
			if ok != tt.ok || got != tt.want {
				t.Errorf("FromHeader: got (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

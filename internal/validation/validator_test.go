package validation

import (
	"strings"
	"testing"
)

func TestNewValidator(t *testing.T) {
	v := NewValidator()
	if v == nil {
		t.Fatal("NewValidator returned nil")
	}
	if v.handlePattern == nil || v.gidPattern == nil {
		t.Error("patterns not initialized")
	}
	if len(v.injectionPatterns) == 0 {
		t.Error("injection patterns not initialized")
	}
}

func TestValidateHandle(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name    string
		handle  string
		wantErr bool
	}{
		{"simple", "shirt", false},
		{"hyphenated", "womens-fashion", false},
		{"digits", "tee-2024", false},
		{"underscore", "gift_card", false},

		{"empty", "", true},
		{"uppercase", "Shirt", true},
		{"leading hyphen", "-shirt", true},
		{"double hyphen", "a--b", true},
		{"path traversal", "../etc", true},
		{"space", "blue shirt", true},
		{"too long", strings.Repeat("a", 256), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateHandle(tt.handle)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHandle(%q) error = %v, wantErr %v", tt.handle, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGID(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		id      string
		wantErr bool
	}{
		{"gid://shopify/ProductVariant/41234567", false},
		{"gid://shopify/CartLine/abc-123?cart=xyz", false},
		{"", true},
		{"41234567", true},
		{"gid://shopify/ProductVariant/1;drop", true},
		{"http://evil.example.com/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := v.ValidateGID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		email   string
		wantErr bool
	}{
		{"ada@example.com", false},
		{"first.last+tag@shop.co.uk", false},
		{"", true},
		{"ada", true},
		{"ada@localhost", true},
		{"Ada <ada@example.com>", true},
		{"ada@@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := v.ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePhoneAndName(t *testing.T) {
	v := NewValidator()

	if err := v.ValidatePhone(""); err != nil {
		t.Errorf("empty phone should be allowed: %v", err)
	}
	if err := v.ValidatePhone("+16135551111"); err != nil {
		t.Errorf("valid phone rejected: %v", err)
	}
	if err := v.ValidatePhone("613-555-1111"); err == nil {
		t.Error("local format should be rejected")
	}

	if err := v.ValidateName("Zoë O'Brien"); err != nil {
		t.Errorf("valid name rejected: %v", err)
	}
	for _, bad := range []string{"<script>alert(1)</script>", "x\x00y", "a\x07b", strings.Repeat("n", 256)} {
		if err := v.ValidateName(bad); err == nil {
			t.Errorf("ValidateName(%q) should fail", bad)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	v := NewValidator()

	if err := v.ValidatePassword("abcd"); err == nil {
		t.Error("short password should be rejected")
	}
	if err := v.ValidatePassword("abcde"); err != nil {
		t.Errorf("5 character password rejected: %v", err)
	}
	if err := v.ValidatePassword(strings.Repeat("p", 41)); err == nil {
		t.Error("long password should be rejected")
	}
}

func TestParseQuantity(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"", 1, false},
		{"3", 3, false},
		{" 2 ", 2, false},
		{"0", 0, false},
		{"-1", 0, true},
		{"1000", 0, true},
		{"two", 0, true},
		{"1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := v.ParseQuantity(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseQuantity(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseQuantity(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateRedirect(t *testing.T) {
	v := NewValidator()

	for _, ok := range []string{"/", "/account", "/products/shirt?Size=M"} {
		if err := v.ValidateRedirect(ok); err != nil {
			t.Errorf("ValidateRedirect(%q) = %v", ok, err)
		}
	}
	for _, bad := range []string{"", "https://evil.example.com", "//evil.example.com", "/\\evil", "/a\r\nSet-Cookie: x"} {
		if err := v.ValidateRedirect(bad); err == nil {
			t.Errorf("ValidateRedirect(%q) should fail", bad)
		}
	}
}

func TestValidateCursor(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateCursor(""); err != nil {
		t.Error("empty cursor is allowed")
	}
	if err := v.ValidateCursor("eyJsYXN0X2lkIjo3NjU0MzIxLCJsYXN0X3ZhbHVlIjoiNzY1NDMyMSJ9"); err != nil {
		t.Errorf("valid cursor rejected: %v", err)
	}
	if err := v.ValidateCursor("abc def"); err == nil {
		t.Error("cursor with space should be rejected")
	}
}

func TestSanitizeString(t *testing.T) {
	v := NewValidator()

	got := v.SanitizeString("  hello\x00 world\x07 \n")
	if got != "hello world" {
		t.Errorf("SanitizeString = %q", got)
	}
}

package crypto

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

const testSecret = "correct-horse-battery-staple"

func TestSealOpen(t *testing.T) {
	sealer, err := NewSealer(testSecret)
	if err != nil {
		t.Fatalf("NewSealer failed: %v", err)
	}

	tests := []struct {
		name      string
		plaintext []byte
		aad       []byte
	}{
		{"session payload", []byte(`{"customer_access_token":"abc","cart_id":"gid://shopify/Cart/1"}`), []byte("session")},
		{"empty plaintext", []byte{}, []byte("session")},
		{"no aad", []byte("value"), nil},
		{"binary", []byte{0, 1, 2, 255}, []byte("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := sealer.Seal(tt.plaintext, tt.aad)
			if err != nil {
				t.Fatalf("Seal failed: %v", err)
			}
			if strings.ContainsAny(token, "+/=") {
				t.Errorf("token is not URL-safe: %s", token)
			}

			got, err := sealer.Open(token, tt.aad)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			if string(got) != string(tt.plaintext) {
				t.Errorf("round trip mismatch: got %q, want %q", got, tt.plaintext)
			}
		})
	}
}

func TestSealIsRandomized(t *testing.T) {
	sealer, _ := NewSealer(testSecret)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := sealer.Seal([]byte("same"), nil)
		if err != nil {
			t.Fatal(err)
		}
		if seen[token] {
			t.Fatal("identical tokens for identical plaintext")
		}
		seen[token] = true
	}
}

func TestOpenRejects(t *testing.T) {
	sealer, _ := NewSealer(testSecret)
	other, _ := NewSealer("another-secret-value-123")

	token, err := sealer.Seal([]byte("payload"), []byte("session"))
	if err != nil {
		t.Fatal(err)
	}

	tampered := []byte(token)
	mid := len(tampered) / 2
	if tampered[mid] == 'A' {
		tampered[mid] = 'B'
	} else {
		tampered[mid] = 'A'
	}

	tests := []struct {
		name   string
		sealer *Sealer
		token  string
		aad    string
	}{
		{"wrong secret", other, token, "session"},
		{"wrong aad", sealer, token, "cart"},
		{"tampered", sealer, string(tampered), "session"},
		{"not base64", sealer, "%%%", "session"},
		{"too short", sealer, "AAAA", "session"},
		{"empty", sealer, "", "session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.sealer.Open(tt.token, []byte(tt.aad))
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewSealerRejectsShortSecret(t *testing.T) {
	if _, err := NewSealer("short"); err == nil {
		t.Error("expected error for short secret")
	}
}

func TestGenerateSecret(t *testing.T) {
	secret, err := GenerateSecret(32)
	if err != nil {
		t.Fatalf("GenerateSecret failed: %v", err)
	}
	if len(secret) != 32 {
		t.Errorf("expected length 32, got %d", len(secret))
	}
	if err := ValidateSecret(secret); err != nil {
		t.Errorf("generated secret does not validate: %v", err)
	}

	again, _ := GenerateSecret(32)
	if secret == again {
		t.Error("secrets should differ")
	}

	if _, err := GenerateSecret(8); err == nil {
		t.Error("expected error for short length")
	}
}

func TestConcurrentSealing(t *testing.T) {
	sealer, _ := NewSealer(testSecret)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := sealer.Seal([]byte("concurrent"), nil)
			if err != nil {
				errs <- err
				return
			}
			if _, err := sealer.Open(token, nil); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent seal/open failed: %v", err)
	}
}

package config

import "testing"

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken(7, "budi@example.com", "Budi Customer", "customer")
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}

	if claims.UserID != 7 || claims.Email != "budi@example.com" || claims.Role != "customer" {
		t.Errorf("claims salah: %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	t.Setenv("JWT_SECRET", "rahasia-satu")
	token, err := GenerateToken(1, "a@b.c", "A", "customer")
	if err != nil {
		t.Fatal(err)
	}

	t.Setenv("JWT_SECRET", "rahasia-dua")
	if _, err := ValidateToken(token); err == nil {
		t.Error("token dengan secret beda harusnya ditolak")
	}
}

package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	manager, err := NewJWTManager("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	token, err := manager.GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.ID == "" {
		t.Error("token has no unique ID")
	}
}

func TestValidateRejectsTamperedToken(t *testing.T) {
	manager, _ := NewJWTManager("test-secret", time.Hour)
	token, err := manager.GenerateToken(1, "bob")
	if err != nil {
		t.Fatal(err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := manager.ValidateToken(tampered); err == nil {
		t.Error("ValidateToken accepted a tampered token")
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signer, _ := NewJWTManager("secret-a", time.Hour)
	verifier, _ := NewJWTManager("secret-b", time.Hour)

	token, err := signer.GenerateToken(1, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ValidateToken(token); err == nil {
		t.Error("ValidateToken accepted a token signed with a different secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager, _ := NewJWTManager("test-secret", -time.Minute)
	token, err := manager.GenerateToken(1, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := manager.ValidateToken(token); err == nil {
		t.Error("ValidateToken accepted an expired token")
	}
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	if _, err := NewJWTManager("", time.Hour); err == nil {
		t.Error("NewJWTManager accepted an empty secret")
	}
}

func TestTokensAreUnique(t *testing.T) {
	manager, _ := NewJWTManager("test-secret", time.Hour)
	a, _ := manager.GenerateToken(1, "bob")
	b, _ := manager.GenerateToken(1, "bob")
	if strings.Compare(a, b) == 0 {
		t.Error("two tokens for the same user are identical")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "correct horse battery staple" {
		t.Error("hash equals the plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("CheckPassword accepted the wrong password")
	}
}

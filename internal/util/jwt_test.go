package util

import (
	"testing"
	"time"

	"github.com/gravishankar/satify-backend/internal/model"
)

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Email: "author@satify.local", Role: model.Author}
	user.ID = 42

	token, err := GenerateJWT(user, "test-secret-test-secret-test-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(token, "test-secret-test-secret-test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != 42 || claims.Role != model.Author || claims.Email != "author@satify.local" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	token, err := GenerateJWT(user, "correct-secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "wrong-secret"); err == nil {
		t.Fatal("token accepted with the wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	user := &model.User{Email: "a@b.c", Role: model.Student}
	token, err := GenerateJWT(user, "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "secret"); err == nil {
		t.Fatal("expired token accepted")
	}
}

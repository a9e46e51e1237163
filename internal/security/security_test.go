package security

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/argon2"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	encoded, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("password123", encoded) {
		t.Fatal("correct password should verify")
	}
	if VerifyPassword("wrong", encoded) {
		t.Fatal("wrong password should not verify")
	}
	if VerifyPassword("password123", "garbage") {
		t.Fatal("malformed hash should not verify")
	}
}

// VerifyPassword must parse the dollar-separated encoded form exactly: a
// greedy parse once folded "<salt>$<hash>" into one field and rejected
// every valid hash.
func TestVerifyPasswordParsesEncodedForm(t *testing.T) {
	salt := []byte("saltsaltsaltsalt")
	hash := argon2.IDKey([]byte("password123"), salt, 2, 32*1024, 2, 32)
	encoded := fmt.Sprintf("$argon2id$v=19$t=2,m=32768,p=2$%s$%s",
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))

	if !VerifyPassword("password123", encoded) {
		t.Fatal("well-formed encoded hash should verify")
	}

	for _, bad := range []string{
		"$argon2i$v=19$t=2,m=32768,p=2$c2FsdA$aGFzaA",  // wrong variant
		"$argon2id$v=19$t=2,m=32768,p=2$c2FsdA",        // missing hash field
		"$argon2id$v=19$t=x,m=32768,p=2$c2FsdA$aGFzaA", // unparsable params
	} {
		if VerifyPassword("password123", bad) {
			t.Fatalf("malformed encoding %q should not verify", bad)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := MintToken("secret", "s1", "student", "Asha", time.Hour)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}

	claims, err := ParseToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "s1" || claims.Role != "student" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := MintToken("secret", "s1", "student", "", -time.Minute)
	if err != nil {
		t.Fatalf("MintToken: %v", err)
	}
	if _, err := ParseToken(token, "secret"); err == nil {
		t.Fatal("expired token must not parse")
	}
}

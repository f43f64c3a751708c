package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-test"

func sign(t *testing.T, method jwt.SigningMethod, key any, c Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, c).SignedString(key)
	require.NoError(t, err)
	return s
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "idp|alice",
			Issuer:    "https://id.example.com/",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
		Email:   "alice@example.com",
		Name:    "Alice",
		Picture: "https://img.example.com/alice.png",
	}
}

func TestHMACVerify(t *testing.T) {
	v, err := NewHMACVerifier(testSecret, "https://id.example.com/")
	require.NoError(t, err)

	ident, err := v.Verify(sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "idp|alice", ident.ExternalID)
	assert.Equal(t, "alice@example.com", ident.Email)
	require.NotNil(t, ident.Name)
	assert.Equal(t, "Alice", *ident.Name)
	require.NotNil(t, ident.AvatarURL)
	assert.Equal(t, "https://img.example.com/alice.png", *ident.AvatarURL)
}

func TestHMACVerifierRejectsShortSecret(t *testing.T) {
	_, err := NewHMACVerifier("short", "")
	assert.Error(t, err)
}

func TestVerifyRejects(t *testing.T) {
	v, err := NewHMACVerifier(testSecret, "https://id.example.com/")
	require.NoError(t, err)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://evil.example.com/"

	noSubject := validClaims()
	noSubject.Subject = ""

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("another-secret-value"), validClaims()),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"wrong issuer": sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"no subject":   sign(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject),
		"no expiry":    sign(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()),
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestRSAVerify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})

	v, err := NewRSAVerifier(pemBytes, "")
	require.NoError(t, err)

	ident, err := v.Verify(sign(t, jwt.SigningMethodRS256, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "idp|alice", ident.ExternalID)

	// An HS256 token signed with the public key bytes must not pass.
	_, err = v.Verify(sign(t, jwt.SigningMethodHS256, pemBytes, validClaims()))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRSAVerifierRejectsBadPEM(t *testing.T) {
	_, err := NewRSAVerifier([]byte("nope"), "")
	assert.Error(t, err)
}

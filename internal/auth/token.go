package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dukerupert/larder/internal/model"
)

var ErrInvalidToken = errors.New("auth: invalid token")

// Claims is the identity provider's token body.
type Claims struct {
	jwt.RegisteredClaims
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// Verifier checks bearer tokens issued by the identity provider.
type Verifier struct {
	key    any
	method string
	issuer string
}

// NewHMACVerifier accepts HS256 tokens signed with secret.
func NewHMACVerifier(secret, issuer string) (*Verifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: secret must be at least 16 characters")
	}
	return &Verifier{key: []byte(secret), method: jwt.SigningMethodHS256.Alg(), issuer: issuer}, nil
}

// NewRSAVerifier accepts RS256 tokens signed by the key matching publicKeyPEM.
func NewRSAVerifier(publicKeyPEM []byte, issuer string) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("auth: parse public key: %w", err)
	}
	return &Verifier{key: key, method: jwt.SigningMethodRS256.Alg(), issuer: issuer}, nil
}

// Verify validates tokenStr and returns the identity it carries.
func (v *Verifier) Verify(tokenStr string) (model.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{v.method}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (any, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || c.Subject == "" {
		return model.Identity{}, ErrInvalidToken
	}

	ident := model.Identity{ExternalID: c.Subject, Email: c.Email}
	if c.Name != "" {
		ident.Name = &c.Name
	}
	if c.Picture != "" {
		ident.AvatarURL = &c.Picture
	}
	return ident, nil
}

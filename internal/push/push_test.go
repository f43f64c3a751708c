package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/larder/internal/model"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	require.NoError(t, err)

	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	require.NoError(t, err)
	assert.Len(t, pubBytes, 65, "uncompressed P-256 point")

	privBytes, err := base64.RawURLEncoding.DecodeString(priv)
	require.NoError(t, err)
	assert.Len(t, privBytes, 32)

	pub2, _, err := GenerateVAPIDKeys()
	require.NoError(t, err)
	assert.NotEqual(t, pub, pub2)
}

// browserSubscription builds a subscription with real client keys so the
// payload can be encrypted.
func browserSubscription(t *testing.T, endpoint string) model.PushSubscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return model.PushSubscription{
		ID:        "sub1",
		Endpoint:  endpoint,
		P256dhKey: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		AuthKey:   base64.RawURLEncoding.EncodeToString(auth),
	}
}

func TestServiceSend(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	require.NoError(t, err)

	tests := []struct {
		name    string
		status  int
		wantErr error
		anyErr  bool
	}{
		{"created", http.StatusCreated, nil, false},
		{"gone", http.StatusGone, ErrExpired, true},
		{"server error", http.StatusInternalServerError, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAuth string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotAuth = r.Header.Get("Authorization")
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			svc := NewService(pub, priv, "mailto:test@example.com")
			err := svc.Send(context.Background(), browserSubscription(t, srv.URL), Payload{Title: "t", Body: "b"})

			assert.Contains(t, gotAuth, "vapid")
			if !tt.anyErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}

func TestVAPIDPublicKey(t *testing.T) {
	assert.Equal(t, "pub", NewService("pub", "priv", "mailto:x@example.com").VAPIDPublicKey())
}

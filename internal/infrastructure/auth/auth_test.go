package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef-secret"

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewHMACVerifier_RejectsShortSecret(t *testing.T) {
	_, err := NewHMACVerifier("short")
	assert.Error(t, err)
}

func TestHMACVerifier_Verify(t *testing.T) {
	v, err := NewHMACVerifier(testSecret)
	require.NoError(t, err)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).Unix()

	sub, err := v.Verify(ctx, signHS256(t, testSecret, jwt.MapClaims{"sub": "u-1", "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, "u-1", sub)

	cases := map[string]string{
		"expired":     signHS256(t, testSecret, jwt.MapClaims{"sub": "u-1", "exp": time.Now().Add(-time.Hour).Unix()}),
		"no exp":      signHS256(t, testSecret, jwt.MapClaims{"sub": "u-1"}),
		"no subject":  signHS256(t, testSecret, jwt.MapClaims{"exp": exp}),
		"wrong key":   signHS256(t, "another-secret-of-length", jwt.MapClaims{"sub": "u-1", "exp": exp}),
		"not a token": "abc.def.ghi",
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(ctx, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMiddleware(t *testing.T) {
	v, err := NewHMACVerifier(testSecret)
	require.NoError(t, err)
	valid := signHS256(t, testSecret, jwt.MapClaims{"sub": "u-7", "exp": time.Now().Add(time.Hour).Unix()})

	e := echo.New()
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(SubjectKey).(string))
	}, Middleware(v))

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{name: "valid", header: "Bearer " + valid, status: http.StatusOK, body: "u-7"},
		{name: "lowercase scheme", header: "bearer " + valid, status: http.StatusOK, body: "u-7"},
		{name: "missing", header: "", status: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + valid, status: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer ", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}

func jwksServer(t *testing.T, kid string, key *rsa.PublicKey) *httptest.Server {
	t.Helper()
	body, err := json.Marshal(jwksResponse{Keys: []jwk{{
		Kty: "RSA",
		Kid: kid,
		Use: "sig",
		Alg: "RS256",
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}}})
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCognitoVerifier_Verify(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	srv := jwksServer(t, "kid-1", &key.PublicKey)
	issuer := "https://cognito-idp.eu-west-1.amazonaws.com/pool"
	v := newCognitoVerifier(issuer, srv.URL)
	ctx := context.Background()

	sign := func(kid string, claims jwt.MapClaims) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		if kid != "" {
			token.Header["kid"] = kid
		}
		s, err := token.SignedString(key)
		require.NoError(t, err)
		return s
	}
	exp := time.Now().Add(time.Hour).Unix()

	sub, err := v.Verify(ctx, sign("kid-1", jwt.MapClaims{"sub": "u-1", "iss": issuer, "exp": exp}))
	require.NoError(t, err)
	assert.Equal(t, "u-1", sub)

	_, err = v.Verify(ctx, sign("kid-1", jwt.MapClaims{"sub": "u-1", "iss": "https://elsewhere", "exp": exp}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, sign("kid-2", jwt.MapClaims{"sub": "u-1", "iss": issuer, "exp": exp}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(ctx, sign("", jwt.MapClaims{"sub": "u-1", "iss": issuer, "exp": exp}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	hs := signHS256(t, testSecret, jwt.MapClaims{"sub": "u-1", "iss": issuer, "exp": exp})
	_, err = v.Verify(ctx, hs)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRSAFromJWK(t *testing.T) {
	_, err := rsaFromJWK("AQAB", "")
	assert.Error(t, err)

	pub, err := rsaFromJWK("AQAB", "AQAB")
	require.NoError(t, err)
	assert.Equal(t, 65537, pub.E)
}

package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpay/bpay/internal/common"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestIssuer(t *testing.T) (*Issuer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	return NewIssuer([]byte("super-secret"), time.Hour, WithClock(clock.Now)), clock
}

func TestIssueAndValidate(t *testing.T) {
	t.Parallel()
	issuer, clock := newTestIssuer(t)

	tok, err := issuer.Issue("a@x.com", "user")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := issuer.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.True(t, claims.IssuedAt.Time.Equal(clock.t))
	assert.True(t, claims.ExpiresAt.Time.Equal(clock.t.Add(time.Hour)))
	assert.Equal(t, jwt.ClaimStrings{SessionAudience}, claims.Audience)
}

func TestValidate_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	issuer, clock := newTestIssuer(t)
	issued := clock.t

	tok, err := issuer.Issue("a@x.com", "user")
	require.NoError(t, err)

	clock.t = issued.Add(time.Hour - time.Second)
	_, err = issuer.Validate(tok)
	require.NoError(t, err, "token must still be valid just before expiry")

	clock.t = issued.Add(time.Hour + time.Second)
	claims, err := issuer.Validate(tok)
	require.Error(t, err, "token must be rejected just after expiry")
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
}

func TestValidate_WrongSecret(t *testing.T) {
	t.Parallel()
	issuer, _ := newTestIssuer(t)

	tok, err := issuer.Issue("a@x.com", "user")
	require.NoError(t, err)

	other := NewIssuer([]byte("other-secret"), time.Hour)
	claims, err := other.Validate(tok)
	assert.Nil(t, claims)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestValidate_Malformed(t *testing.T) {
	t.Parallel()
	issuer, _ := newTestIssuer(t)

	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		claims, err := issuer.Validate(tok)
		assert.Nil(t, claims)
		assert.True(t, errors.Is(err, common.ErrInvalidToken), "token %q", tok)
	}
}

func TestValidate_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	issuer, clock := newTestIssuer(t)

	claims := Claims{
		Email: "a@x.com",
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(clock.t.Add(time.Hour)),
		},
	}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = issuer.Validate(hs512)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Validate(none)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func TestValidate_RequiresExpiry(t *testing.T) {
	t.Parallel()
	issuer, _ := newTestIssuer(t)

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "a@x.com"}).SignedString([]byte("super-secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(tok)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}

func parseDirect(t *testing.T, tok string, now func() time.Time) (jwt.MapClaims, error) {
	t.Helper()
	parsed := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tok, parsed, func(*jwt.Token) (any, error) { return []byte("super-secret"), nil },
		jwt.WithAudience(DirectAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now))
	return parsed, err
}

func TestIssuePayload(t *testing.T) {
	t.Parallel()
	issuer, clock := newTestIssuer(t)
	issued := clock.t

	tok, err := issuer.IssuePayload(map[string]any{
		"email": "a@x.com",
		"role":  "admin",
		"extra": "kept",
		"exp":   issued.Add(100 * 24 * time.Hour).Unix(),
		"iat":   0,
		"aud":   SessionAudience,
	})
	require.NoError(t, err)

	parsed, err := parseDirect(t, tok, clock.Now)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", parsed["email"])
	assert.Equal(t, "admin", parsed["role"])
	assert.Equal(t, "kept", parsed["extra"])

	exp, err := parsed.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, exp.Time.Equal(issued.Add(time.Hour)), "caller cannot extend expiry")
	iat, err := parsed.GetIssuedAt()
	require.NoError(t, err)
	assert.True(t, iat.Time.Equal(issued))

	clock.t = issued.Add(time.Hour + time.Second)
	_, err = parseDirect(t, tok, clock.Now)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestIssuePayload_NotAcceptedAsSession(t *testing.T) {
	t.Parallel()
	issuer, _ := newTestIssuer(t)

	payloads := []map[string]any{
		{"email": "evil@x.com", "role": "admin"},
		{"email": "evil@x.com", "role": "admin", "aud": SessionAudience},
		{"email": "evil@x.com", "role": "admin", "aud": []string{SessionAudience, DirectAudience}},
	}
	for _, payload := range payloads {
		tok, err := issuer.IssuePayload(payload)
		require.NoError(t, err)

		claims, err := issuer.Validate(tok)
		assert.Nil(t, claims)
		assert.True(t, errors.Is(err, common.ErrInvalidToken), "payload %v", payload)
	}
}

func TestIssuePayload_Empty(t *testing.T) {
	t.Parallel()
	issuer, clock := newTestIssuer(t)

	tok, err := issuer.IssuePayload(nil)
	require.NoError(t, err)

	parsed, err := parseDirect(t, tok, clock.Now)
	require.NoError(t, err)
	assert.NotContains(t, parsed, "email")
	assert.Contains(t, parsed, "exp")
}

func TestIssue_SubSecondClock(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 900_000_000, time.UTC)}
	issuer := NewIssuer([]byte("super-secret"), time.Hour, WithClock(clock.Now))
	recorded := clock.t.Truncate(time.Second)

	tok, err := issuer.Issue("a@x.com", "user")
	require.NoError(t, err)

	claims, err := issuer.Validate(tok)
	require.NoError(t, err)
	assert.True(t, claims.IssuedAt.Time.Equal(recorded))
	assert.Equal(t, time.Hour, claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time))

	clock.t = recorded.Add(time.Hour - time.Millisecond)
	_, err = issuer.Validate(tok)
	require.NoError(t, err, "token must be valid until iat+ttl")

	clock.t = recorded.Add(time.Hour)
	_, err = issuer.Validate(tok)
	assert.True(t, errors.Is(err, common.ErrTokenExpired))

	direct, err := issuer.IssuePayload(map[string]any{"email": "a@x.com"})
	require.NoError(t, err)
	clock.t = recorded.Add(time.Hour - time.Millisecond)
	parsed, err := parseDirect(t, direct, clock.Now)
	require.NoError(t, err)
	iat, err := parsed.GetIssuedAt()
	require.NoError(t, err)
	exp, err := parsed.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, iat.Time.Equal(recorded))
	assert.Equal(t, time.Hour, exp.Time.Sub(iat.Time))
}

func TestTTL(t *testing.T) {
	assert.Equal(t, 5*time.Minute, NewIssuer([]byte("k"), 5*time.Minute).TTL())
}

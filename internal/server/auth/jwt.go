package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/bpay/bpay/internal/common"
)

// Audiences separate login sessions from tokens signed over caller payloads.
// Validate only accepts SessionAudience.
const (
	SessionAudience = "bpay-session"
	DirectAudience  = "bpay-direct"
)

// Claims are the session token payload issued after login.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and validates HS256 session tokens. Every token it issues
// expires ttl after issuance, whichever path produced it. Issuance is
// recorded at whole-second resolution so iat and exp are exactly ttl apart.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// IssuerOption customises an Issuer.
type IssuerOption func(*Issuer)

// WithClock replaces time.Now for issuance and validation.
func WithClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(secret []byte, ttl time.Duration, opts ...IssuerOption) *Issuer {
	i := &Issuer{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// TTL returns the lifetime applied to every token.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) window() (iat, exp *jwt.NumericDate) {
	now := i.now().Truncate(time.Second)
	return jwt.NewNumericDate(now), jwt.NewNumericDate(now.Add(i.ttl))
}

// Issue creates a token for an authenticated user.
func (i *Issuer) Issue(email, role string) (string, error) {
	iat, exp := i.window()
	return i.sign(Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			Audience:  jwt.ClaimStrings{SessionAudience},
			IssuedAt:  iat,
			ExpiresAt: exp,
		},
	})
}

// IssuePayload signs an arbitrary payload. iat, exp and aud are always set by
// the issuer; values supplied by the caller for those keys are replaced. The
// result carries DirectAudience and is never accepted by Validate.
func (i *Issuer) IssuePayload(payload map[string]any) (string, error) {
	claims := make(jwt.MapClaims, len(payload)+3)
	for k, v := range payload {
		claims[k] = v
	}

	iat, exp := i.window()
	claims["iat"] = iat
	claims["exp"] = exp
	claims["aud"] = DirectAudience

	return i.sign(claims)
}

func (i *Issuer) sign(claims jwt.Claims) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", oops.Code("TOKEN_SIGN_FAILED").Wrap(err)
	}
	return s, nil
}

// Validate checks signature, algorithm, audience and expiry. It never returns
// claims together with an error: expired tokens yield common.ErrTokenExpired,
// everything else common.ErrInvalidToken.
func (i *Issuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience(SessionAudience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(common.ErrTokenExpired)
		}
		return nil, oops.Code("TOKEN_INVALID").
			With("reason", err.Error()).
			Wrap(common.ErrInvalidToken)
	}
	if !token.Valid {
		return nil, oops.Code("TOKEN_INVALID").Wrap(common.ErrInvalidToken)
	}

	return claims, nil
}

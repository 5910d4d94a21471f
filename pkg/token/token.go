package token

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/Hesed2817/taskflow-app/domain"
)

// Issuer signs and parses the access tokens handed to clients after login.
// The core only certifies "this token's subject is user X"; cookie and
// header plumbing stay in the transport layer.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// Claims carries the user ID plus the token ID used to key the session cache.
type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func NewIssuer(secret, issuer string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL returns the configured token lifetime.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

// Issue signs a token for the user and returns it with its token ID and expiry.
func (i *Issuer) Issue(userID string) (signed, tokenID string, expiresAt time.Time, err error) {
	tokenID = uuid.NewString()
	expiresAt = time.Now().Add(i.ttl)

	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, tokenID, expiresAt, nil
}

// Parse validates the signature and expiry and returns the embedded claims.
func (i *Issuer) Parse(signed string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(signed, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.NewError(domain.ErrCodeUnauthorized, "unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	return claims, nil
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken covers any token that fails parsing or signature
	// verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for a structurally valid token past
	// its exp claim.
	ErrExpiredToken = errors.New("token has expired")
)

// Claims is the JWT payload issued to an operator of the director API:
// which project ids they may tick, distinct from mbflow's
// user/role/tenant claim shape since this service has no user accounts
// of its own.
type Claims struct {
	jwt.RegisteredClaims
	ProjectScope []string `json:"project_scope"`
}

// AllowsProject reports whether these claims grant access to
// projectID. An empty ProjectScope means "all projects".
func (c Claims) AllowsProject(projectID string) bool {
	if len(c.ProjectScope) == 0 {
		return true
	}
	for _, p := range c.ProjectScope {
		if p == projectID {
			return true
		}
	}
	return false
}

// TokenService issues and validates HS256 bearer tokens for the API.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenService returns a TokenService signing with secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), issuer: "story-graph-assistant", ttl: ttl}
}

// Issue mints a signed token scoped to projectIDs (empty means
// unrestricted).
func (s *TokenService) Issue(subject string, projectIDs []string) (string, time.Time, error) {
	expiresAt := time.Now().Add(s.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		ProjectScope: projectIDs,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses and verifies tokenString, returning its claims.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

const contextKeyClaims = "director_claims"

// RequireAuth is gin middleware enforcing a valid bearer token. When
// svc is nil the service runs unauthenticated — the same
// "auth is optional in dev, required in prod" posture the config
// layer's JWTSecret-empty-allowed default encodes.
func RequireAuth(svc *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, http.StatusUnauthorized, "bearer token required")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := svc.Validate(token)
		if err != nil {
			respondError(c, http.StatusUnauthorized, err.Error())
			c.Abort()
			return
		}
		c.Set(contextKeyClaims, claims)
		c.Next()
	}
}

// claimsFrom extracts the validated claims gin stashed on c, if auth is
// enabled.
func claimsFrom(c *gin.Context) (*Claims, bool) {
	v, ok := c.Get(contextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok
}

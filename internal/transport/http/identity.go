package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"english-quiz-service/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const playerKey = "player"

var errUnauthenticated = errors.New("unauthenticated")

// IdentityResolver turns an inbound request into the quiz-taker it belongs to.
type IdentityResolver interface {
	Resolve(r *http.Request) (domain.Player, error)
}

// HeaderResolver trusts X-User-ID / X-User-Name as set by an upstream gateway.
// Browsers cannot set headers on websocket upgrades, so userId / name query
// parameters are accepted as well.
type HeaderResolver struct{}

func (HeaderResolver) Resolve(r *http.Request) (domain.Player, error) {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	name := strings.TrimSpace(r.Header.Get("X-User-Name"))
	if id == "" {
		id = strings.TrimSpace(r.URL.Query().Get("userId"))
		name = strings.TrimSpace(r.URL.Query().Get("name"))
	}
	if id == "" {
		return domain.Player{}, errUnauthenticated
	}
	return domain.Player{ID: id, Name: name}, nil
}

// Claims carries the player in an HS256 token: sub is the identity.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// JWTResolver validates bearer tokens signed with a shared secret.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret string) *JWTResolver {
	return &JWTResolver{secret: []byte(secret)}
}

func (j *JWTResolver) Resolve(r *http.Request) (domain.Player, error) {
	raw := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			return domain.Player{}, errUnauthenticated
		}
		raw = parts[1]
	}
	if raw == "" {
		return domain.Player{}, errUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		return domain.Player{}, errUnauthenticated
	}
	return domain.Player{ID: claims.Subject, Name: claims.Name}, nil
}

// Issue signs a token for player; ttl <= 0 means no expiry.
func (j *JWTResolver) Issue(player domain.Player, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: player.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  player.ID,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// RequireIdentity aborts with 401 unless the resolver recognizes the caller.
func RequireIdentity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		player, err := resolver.Resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(playerKey, player)
		c.Next()
	}
}

func playerFrom(c *gin.Context) domain.Player {
	v, _ := c.Get(playerKey)
	p, _ := v.(domain.Player)
	return p
}

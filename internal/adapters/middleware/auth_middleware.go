package middleware

import (
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/AchilleasB/kids-programs/marketplace-service/internal/config"
	"github.com/AchilleasB/kids-programs/marketplace-service/internal/core/domain"
)

const revokedTokenPrefix = "revoked_token:"

// TokenStore is the subset of the Redis client used for token revocation.
type TokenStore interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthMiddleware verifies identity-provider tokens. HS256 tokens are checked
// against the shared secret, RS256 tokens against the public key.
type AuthMiddleware struct {
	secret    []byte
	publicKey *rsa.PublicKey
	tokens    TokenStore
	cb        *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

func NewAuthMiddleware(secret string, publicKey *rsa.PublicKey, tokens TokenStore, logger *zap.Logger) *AuthMiddleware {
	m := &AuthMiddleware{
		publicKey: publicKey,
		tokens:    tokens,
		cb:        config.NewCircuitBreaker(config.BreakerRedis, logger),
		logger:    logger,
	}
	if secret != "" {
		m.secret = []byte(secret)
	}
	return m
}

type contextKey string

const (
	identityKey contextKey = "identity"
	tokenKey    contextKey = "token"
	actorKey    contextKey = "actor"
)

type tokenInfo struct {
	revocationKey string
	expiresAt     time.Time
}

// Authenticate rejects requests without a valid, unrevoked bearer token and
// stores the caller's Identity in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		tokenString := parts[1]

		token, err := jwt.Parse(tokenString, m.keyFunc, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			m.logger.Debug("token rejected", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid token claims")
			return
		}

		userID, _ := claims["sub"].(string)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, "invalid token: missing user ID")
			return
		}
		email, _ := claims["email"].(string)

		exp, err := claims.GetExpirationTime()
		if err != nil || exp == nil {
			writeError(w, http.StatusUnauthorized, "invalid token: missing expiry")
			return
		}

		info := tokenInfo{revocationKey: revocationKey(tokenString), expiresAt: exp.Time}
		revoked, err := m.isRevoked(r.Context(), info.revocationKey)
		if err != nil {
			m.logger.Error("token revocation check failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "authentication temporarily unavailable")
			return
		}
		if revoked {
			writeError(w, http.StatusUnauthorized, "token has been revoked")
			return
		}

		ctx := WithIdentity(r.Context(), domain.Identity{ID: userID, Email: email})
		ctx = context.WithValue(ctx, tokenKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) keyFunc(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if m.secret == nil {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	case *jwt.SigningMethodRSA:
		if m.publicKey == nil {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.publicKey, nil
	default:
		return nil, jwt.ErrSignatureInvalid
	}
}

func (m *AuthMiddleware) isRevoked(ctx context.Context, key string) (bool, error) {
	n, err := m.cb.Execute(func() (interface{}, error) {
		return m.tokens.Exists(ctx, key).Result()
	})
	if err != nil {
		return false, err
	}
	return n.(int64) > 0, nil
}

// Revoke blacklists the token that authenticated ctx until it would have expired anyway.
func (m *AuthMiddleware) Revoke(ctx context.Context) error {
	info, ok := ctx.Value(tokenKey).(tokenInfo)
	if !ok {
		return domain.ErrUnauthenticated
	}

	ttl := time.Until(info.expiresAt)
	if ttl <= 0 {
		return nil
	}

	_, err := m.cb.Execute(func() (interface{}, error) {
		return nil, m.tokens.Set(ctx, info.revocationKey, "1", ttl).Err()
	})
	return err
}

func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return revokedTokenPrefix + hex.EncodeToString(sum[:])
}

func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func IdentityFromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}

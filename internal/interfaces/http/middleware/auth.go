package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/homechef/backend/internal/domain/account"
	"github.com/homechef/backend/internal/domain/shared"
	"github.com/homechef/backend/internal/infrastructure/auth"
	"github.com/homechef/backend/internal/infrastructure/logger"
	"github.com/homechef/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin context keys set by Authenticate
const (
	ClaimsKey  = "auth_claims"
	SubjectKey = "auth_subject"
	ActorKey   = "auth_actor"
)

const (
	authHeader   = "Authorization"
	bearerPrefix = "Bearer "
)

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AccountLookup resolves the token subject to its marketplace account
type AccountLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// AuthConfig configures Authenticate
type AuthConfig struct {
	Verifier TokenVerifier
	Accounts AccountLookup
	// Revoker is optional; revocation checks fail open
	Revoker auth.SessionRevoker
	// Unregistered lists "METHOD /route" pairs that accept a valid token
	// whose subject has no account yet
	Unregistered []string
	// QueryTokenRoutes lists routes that may pass the token as ?token=,
	// for clients that cannot set headers such as browser websockets
	QueryTokenRoutes []string
	Logger           *zap.Logger
}

// Authenticate validates the bearer token and loads the caller's account.
// The role always comes from the stored account, never from the token.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		token, ok := bearerToken(c, cfg.QueryTokenRoutes)
		if !ok {
			abort(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			log.Debug("Token rejected", zap.Error(err), zap.String("path", c.Request.URL.Path))
			code, msg := tokenError(err)
			abort(c, code, msg)
			return
		}
		subject, err := claims.AccountID()
		if err != nil {
			abort(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}
		ctx := c.Request.Context()

		if cfg.Revoker != nil {
			revoked, err := cfg.Revoker.IsRevoked(ctx, subject, claims.IssuedAtTime())
			switch {
			case err != nil:
				log.Error("Failed to check session revocation",
					zap.String("account_id", subject.String()), zap.Error(err))
			case revoked:
				abort(c, dto.ErrCodeTokenRevoked, "Session has been revoked")
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(SubjectKey, subject)

		acct, err := cfg.Accounts.FindByID(ctx, subject)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			if slices.Contains(cfg.Unregistered, c.Request.Method+" "+c.FullPath()) {
				c.Next()
				return
			}
			abort(c, dto.ErrCodeNotRegistered, "Create your account before using this endpoint")
			return
		case err != nil:
			log.Error("Failed to load account", zap.String("account_id", subject.String()), zap.Error(err))
			abort(c, dto.ErrCodeInternal, "An unexpected error occurred")
			return
		}
		if !acct.IsActive() {
			abort(c, "ACCOUNT_SUSPENDED", "Account is suspended")
			return
		}

		actor := account.Actor{ID: acct.ID, Role: acct.Role}
		c.Set(ActorKey, actor)
		c.Request = c.Request.WithContext(logger.WithIdentity(ctx, actor.ID.String(), string(actor.Role)))
		c.Next()
	}
}

func bearerToken(c *gin.Context, queryRoutes []string) (string, bool) {
	if h := c.GetHeader(authHeader); h != "" {
		if !strings.HasPrefix(h, bearerPrefix) {
			return "", false
		}
		token := strings.TrimSpace(strings.TrimPrefix(h, bearerPrefix))
		return token, token != ""
	}
	if c.Request.Method == http.MethodGet && slices.Contains(queryRoutes, c.FullPath()) {
		token := c.Query("token")
		return token, token != ""
	}
	return "", false
}

func tokenError(err error) (string, string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return dto.ErrCodeTokenInvalid, "Token is not yet valid"
	default:
		return dto.ErrCodeTokenInvalid, "Invalid token"
	}
}

// RequireRoles lets only the given roles through. It must run after Authenticate.
func RequireRoles(roles ...account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abort(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !slices.Contains(roles, actor.Role) {
			abort(c, dto.ErrCodeForbidden, "Your role cannot use this endpoint")
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated caller
func GetActor(c *gin.Context) (account.Actor, bool) {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(account.Actor); ok {
			return actor, true
		}
	}
	return account.Actor{}, false
}

// GetSubject returns the verified token subject, set even when the subject
// has no account yet
func GetSubject(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(SubjectKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetClaims returns the verified token claims
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

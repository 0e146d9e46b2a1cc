package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/moviegraph/moviegraph/internal/controllers"
)

type contextKey int

const (
	authIDKey contextKey = iota
	accessTokenKey
)

const (
	subjectCacheTTL     = 5 * time.Minute
	subjectCacheCleanup = 10 * time.Minute
)

// Authenticator resolves bearer tokens to a subject id through the identity
// provider, caching resolutions so repeated requests with the same token do
// not hammer the userinfo endpoint.
type Authenticator struct {
	identity controllers.IdentityProvider
	subjects *gocache.Cache
	logger   *logrus.Logger
}

func NewAuthenticator(identity controllers.IdentityProvider, logger *logrus.Logger) *Authenticator {
	return &Authenticator{
		identity: identity,
		subjects: gocache.New(subjectCacheTTL, subjectCacheCleanup),
		logger:   logger,
	}
}

// RequireAuth rejects requests without a resolvable bearer token and injects
// the caller's subject id and raw token into the request context.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			unauthorized(w, "missing bearer token")
			return
		}

		authID, ok := a.subjects.Get(token)
		if !ok {
			info, err := a.identity.UserInfo(r.Context(), token)
			if err != nil {
				a.logger.WithError(err).Debug("Token resolution failed")
				unauthorized(w, "invalid token")
				return
			}
			authID = info.Sub
			a.subjects.Set(token, info.Sub, gocache.DefaultExpiration)
		}

		ctx := context.WithValue(r.Context(), authIDKey, authID.(string))
		ctx = context.WithValue(ctx, accessTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthID returns the authenticated subject id set by RequireAuth, empty when
// the request was not authenticated.
func AuthID(ctx context.Context) string {
	id, _ := ctx.Value(authIDKey).(string)
	return id
}

// AccessToken returns the raw bearer token set by RequireAuth.
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}

// Package auth validates bearer JWTs and enforces sourcing permissions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/hlog"

	"sourcing/internal/respond"
)

// Permissions carried in the token's "permissions" claim.
const (
	PermSourcingManage  = "sourcing.manage"
	PermSourcingRespond = "sourcing.respond"
)

// Claims is the token payload.
type Claims struct {
	UserID      int64    `json:"uid"`
	Username    string   `json:"username"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	UserID      int64
	Username    string
	Permissions []string
}

// Has reports whether the caller holds any of perms.
func (id Identity) Has(perms ...string) bool {
	for _, p := range perms {
		if slices.Contains(id.Permissions, p) {
			return true
		}
	}
	return false
}

type ctxKey struct{}

// WithIdentity returns ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller stored by the Authenticator.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

var errMalformedHeader = errors.New("authorization header must be \"Bearer <token>\"")

// Authenticator checks HS256 tokens signed with a shared secret.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Parse validates tokenString and returns its claims.
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID <= 0 {
		return nil, errors.New("token has no user id")
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token with 401.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("missing bearer token")
			respond.Error(w, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}
		claims, err := a.Parse(tokenString)
		if err != nil {
			hlog.FromRequest(r).Debug().Err(err).Msg("rejected token")
			respond.Error(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		id := Identity{UserID: claims.UserID, Username: claims.Username, Permissions: claims.Permissions}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// Require allows the request when the caller holds any of perms and answers 403 otherwise.
func Require(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !id.Has(perms...) {
				respond.Error(w, http.StatusForbidden, fmt.Sprintf("requires permission %s", strings.Join(perms, " or ")))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errMalformedHeader
	}
	return strings.TrimSpace(token), nil
}

// IssueToken signs a token for the given user that expires after ttl.
func IssueToken(secret string, userID int64, username string, perms []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:      userID,
		Username:    username,
		Permissions: perms,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

package jwtmw

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/platform/apperr"
)

// DefaultPrefix is the scheme word expected in the Authorization header.
const DefaultPrefix = "Bearer"

// ContextUserID is the gin context key holding the authenticated user's id.
const ContextUserID = "userID"

var (
	errDecode = apperr.WithDetail(apperr.ErrAuthenticationFailed, "Invalid authentication. Could not decode token.")
	errNoUser = apperr.WithDetail(apperr.ErrAuthenticationFailed, "No user matching this token was found.")
)

// Identity is the authenticated principal attached to a request.
type Identity struct {
	UserID  uint
	Email   string
	Name    string
	IsStaff bool
}

// IdentityResolver looks up the alive user a token refers to.
// It returns an error wrapping apperr.ErrNotFound when no such user exists.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, userID uint) (*Identity, error)
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored in ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// CurrentIdentity returns the identity of the request handled by c.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	if c.Request == nil {
		return Identity{}, false
	}
	return IdentityFrom(c.Request.Context())
}

// Authenticate resolves the Authorization header into an Identity.
//
// 不正な形式のヘッダーは匿名として扱い、後続のパーミッションに判断を委ねます。
// トークンが提示されたのに検証・解決できない場合のみ401で中断します。
func Authenticate(codec *Codec, resolver IdentityResolver, prefix string) gin.HandlerFunc {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"), prefix)
		if !ok {
			c.Next()
			return
		}

		claims, err := codec.Decode(token)
		if err != nil {
			apperr.Write(c, errDecode)
			return
		}

		id, err := resolver.ResolveIdentity(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				apperr.Write(c, errNoUser)
				return
			}
			_ = c.Error(err)
			apperr.Write(c, err)
			return
		}
		if id == nil {
			apperr.Write(c, errNoUser)
			return
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), *id))
		c.Set(ContextUserID, id.UserID)
		c.Next()
	}
}

// bearerToken extracts the token from "<prefix> <token>".
// Anything else yields ok=false.
func bearerToken(header, prefix string) (string, bool) {
	words := strings.Fields(header)
	if len(words) != 2 || words[0] != prefix {
		return "", false
	}
	return words[1], true
}

// RequireIdentity rejects anonymous requests.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentIdentity(c); !ok {
			apperr.Write(c, apperr.ErrNotAuthenticated)
			return
		}
		c.Next()
	}
}

// ReadOnlyOrAuthenticated lets safe methods through anonymously and requires
// an identity for everything else.
func ReadOnlyOrAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if _, ok := CurrentIdentity(c); !ok {
			apperr.Write(c, apperr.ErrNotAuthenticated)
			return
		}
		c.Next()
	}
}

// RequireStaff allows only staff identities.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			apperr.Write(c, apperr.ErrNotAuthenticated)
			return
		}
		if !id.IsStaff {
			apperr.Write(c, apperr.ErrPermissionDenied)
			return
		}
		c.Next()
	}
}

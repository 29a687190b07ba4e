package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smartlogix/cargopro/internal/authcontext"
	identitydomain "github.com/smartlogix/cargopro/internal/identity/domain"
	obscontext "github.com/smartlogix/cargopro/internal/observability/context"
)

const contextIdentityKey = "identity"

// AuthRequired verifies the bearer access token and reloads the user so
// the role in effect reflects current group membership, not the role
// frozen into the token at issue time.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		claims, err := s.tokens.ParseAccess(raw)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		id, err := s.identitySvc.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := authcontext.WithIdentity(c.Request.Context(), id)
		ctx = obscontext.WithActor(ctx, "user", id.User.ID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextIdentityKey, id)
		c.Next()
	}
}

// RequireAction gates the route on the access policy. Runs after
// AuthRequired.
func (s *Server) RequireAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := identityFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := s.policySvc.Authorize(c.Request.Context(), id.Role, object, action); err != nil {
			if s.obsMetrics != nil {
				s.obsMetrics.RecordAccessDenied(c.Request.Context(), object, action)
			}
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) (identitydomain.Identity, bool) {
	value, ok := c.Get(contextIdentityKey)
	if !ok {
		return identitydomain.Identity{}, false
	}
	id, ok := value.(identitydomain.Identity)
	return id, ok
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	authdomain "github.com/masjidkita/masjidkita/internal/auth/domain"
	"github.com/masjidkita/masjidkita/internal/auth/session"
	"github.com/masjidkita/masjidkita/internal/authz"
)

const (
	ctxActorKey = "actor"
	ctxUserKey  = "user"
)

// AuthRequired resolves the session cookie into an Actor. Requests without
// a valid session are rejected before reaching the handler.
func AuthRequired(sessions *session.Manager, users authdomain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := sessions.ReadToken(c)
		if !ok {
			abortWithError(c, errUnauthenticated)
			return
		}
		sess, err := users.Authenticate(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}
		user, err := users.UserByID(c.Request.Context(), sess.UserID)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(ctxActorKey, authz.Actor{
			UserID:        user.ID,
			PlatformAdmin: user.IsPlatformAdmin(),
		})
		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func actorFrom(c *gin.Context) authz.Actor {
	v, _ := c.Get(ctxActorKey)
	actor, _ := v.(authz.Actor)
	return actor
}

func userFrom(c *gin.Context) *authdomain.User {
	v, _ := c.Get(ctxUserKey)
	user, _ := v.(*authdomain.User)
	return user
}

// idParam parses a snowflake id path parameter.
func idParam(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil {
		return 0, false
	}
	return id, true
}

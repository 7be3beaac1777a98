package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/Pvngu/tecnm-monorepo-sub000/internal/audit"
)

// ActorKey is the gin.Context key holding the request's audit.Actor.
const ActorKey = "audit_actor"

// ActorMiddleware stores the audit.Actor for the request: the authenticated
// user id when present, and the request id for log correlation.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ActorKey, actorFrom(c))
		c.Next()
	}
}

// ActorFromContext returns the actor stored by ActorMiddleware. Without it the
// actor is built on the spot, which yields a system actor for unauthenticated
// requests.
func ActorFromContext(c *gin.Context) audit.Actor {
	if v, ok := c.Get(ActorKey); ok {
		if actor, ok := v.(audit.Actor); ok {
			return actor
		}
	}
	return actorFrom(c)
}

func actorFrom(c *gin.Context) audit.Actor {
	actor := audit.Actor{RequestID: c.GetString(RequestIDKey)}
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(int64); ok && id > 0 {
			actor.UserID = &id
		}
	}
	return actor
}

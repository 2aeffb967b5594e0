package middleware

import "github.com/gofiber/fiber/v2"

const (
	// ActorHeader carries the authenticated user ID set by the gateway.
	ActorHeader = "X-User-ID"
	// ActorLocalKey stores the actor ID in Fiber's context locals.
	ActorLocalKey = "actor_id"
)

// Actor copies the gateway-supplied user identity into context locals so the
// logger and handlers see the same value. An absent header means an
// anonymous or system caller; nothing is rejected here.
func Actor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(ActorLocalKey, c.Get(ActorHeader))
		return c.Next()
	}
}

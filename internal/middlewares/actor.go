package middlewares

import (
	"fmt"
	"strings"

	"github.com/exchora/auditchain/internal/audit"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const actorLocalsKey = "auditActor"

// NewActorExtractor authenticates the bearer token and stores the resulting
// audit.Actor in the request locals. The audit core performs no
// authentication itself; this middleware is the collaborator that hands it
// already-verified actor descriptors.
func NewActorExtractor(jwtSecret string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenString, found := strings.CutPrefix(ctx.Get(fiber.HeaderAuthorization), "Bearer ")
		if !found {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid bearer token")
		}

		actor := audit.Actor{
			IPAddress: ctx.IP(),
			DeviceID:  ctx.Get("X-Device-ID"),
		}
		if sub, err := claims.GetSubject(); err == nil {
			actor.UserID = sub
		}
		if email, ok := claims["email"].(string); ok {
			actor.Email = email
		}
		if roles, ok := claims["roles"].([]interface{}); ok {
			for _, role := range roles {
				if name, ok := role.(string); ok {
					actor.Roles = append(actor.Roles, name)
				}
			}
		}

		ctx.Locals(actorLocalsKey, actor)
		return ctx.Next()
	}
}

// ActorFromContext returns the actor placed in locals by NewActorExtractor.
func ActorFromContext(ctx *fiber.Ctx) (audit.Actor, bool) {
	actor, ok := ctx.Locals(actorLocalsKey).(audit.Actor)
	return actor, ok
}

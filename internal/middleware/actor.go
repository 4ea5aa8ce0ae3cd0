package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/zerowastechef/zwc-backend/internal/lifecycle"
)

// Actor is the authenticated caller extracted from JWT claims.
type Actor struct {
	ID   uuid.UUID
	Role lifecycle.Role
}

// GetActor reads the caller's id and role from the verified token in context.
func GetActor(c *fiber.Ctx) (Actor, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return Actor{}, errors.New("invalid token in context")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Actor{}, errors.New("missing sub claim")
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return Actor{}, err
	}

	userType, _ := claims["user_type"].(string)
	return Actor{ID: id, Role: lifecycle.Role(userType)}, nil
}

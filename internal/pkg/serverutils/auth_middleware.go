package serverutils

import (
	"context"
	"strings"

	"intellius-chat-be/internal/entity"
	"intellius-chat-be/internal/pkg/apperror"
	"intellius-chat-be/internal/pkg/credential"
	"intellius-chat-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	LocalUserID   = "user_id"
	LocalUsername = "username"
)

// UserResolver looks a token subject back up to a live user record.
type UserResolver interface {
	FindActiveByUsername(ctx context.Context, username string) (*entity.User, error)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// AuthMiddleware resolves the bearer token to a user on every request and stores
// its id and username in Locals.
func AuthMiddleware(creds credential.IService, users UserResolver, log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		token, ok := BearerToken(ctx.Get(fiber.HeaderAuthorization))
		if !ok {
			return apperror.Unauthorized("Missing bearer token")
		}

		username, err := creds.DecodeToken(token)
		if err != nil {
			return apperror.Unauthorized("Invalid or expired token")
		}

		user, err := users.FindActiveByUsername(ctx.UserContext(), username)
		if err != nil {
			log.Error("AUTH", "Failed to resolve token subject", map[string]interface{}{
				"username": username,
				"error":    err,
			})
			return err
		}
		if user == nil {
			return apperror.Unauthorized("User no longer exists")
		}

		ctx.Locals(LocalUserID, user.Id)
		ctx.Locals(LocalUsername, user.Username)
		return ctx.Next()
	}
}

// CurrentUserID reads the id placed by AuthMiddleware.
func CurrentUserID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, ok := ctx.Locals(LocalUserID).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, apperror.Unauthorized("Not authenticated")
	}
	return id, nil
}

// ParamUUID parses a path parameter, answering 404 for malformed ids.
func ParamUUID(ctx *fiber.Ctx, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, apperror.NotFound(resource + " not found")
	}
	return id, nil
}

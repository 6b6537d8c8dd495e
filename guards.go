package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

const currentUserKey = "current_user"

// tokenFromRequest checks the session cookie first, then the Authorization
// header.
func tokenFromRequest(c *fiber.Ctx, cfg Config) string {
	if token := c.Cookies(cfg.GetContextKey()); token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}

	scheme := cfg.GetAuthScheme() + " "
	if strings.HasPrefix(header, scheme) {
		return strings.TrimPrefix(header, scheme)
	}

	return ""
}

// Protected authenticates the request and stores the current user in the
// request locals and the request context. The stored record is re-read on
// every request so a block takes effect immediately.
func Protected(auther *Auther, cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := tokenFromRequest(c, cfg)
		if raw == "" {
			return RespondError(c, ErrUnableToFindSession)
		}

		claims, err := auther.TokenService().Validate(raw)
		if err != nil {
			return RespondError(c, err)
		}

		session, err := sessionFromAuthClaims(claims)
		if err != nil {
			return RespondError(c, ErrUnableToDecodeSession)
		}

		identity, err := auther.IdentityFromSession(c.Context(), session)
		if err != nil {
			return RespondError(c, err)
		}

		userIdentity, ok := identity.(UserIdentity)
		if !ok {
			return RespondError(c, ErrUnableToDecodeSession)
		}

		c.Locals(currentUserKey, userIdentity.user)

		ctx := WithContext(c.UserContext(), userIdentity.user)
		c.SetUserContext(WithClaimsContext(ctx, claims))

		return c.Next()
	}
}

// RequireVerified rejects authenticated users whose email is still
// unverified.
func RequireVerified() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return RespondError(c, ErrUnableToFindSession)
		}

		if !user.EmailVerified {
			return RespondError(c, ErrAccountNotVerified)
		}

		return c.Next()
	}
}

// RequireAdmin rejects non-admin users.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return RespondError(c, ErrUnableToFindSession)
		}

		if !user.IsAdmin() {
			return RespondError(c, goerrors.New("admin access required", goerrors.CategoryAuthz).
				WithCode(goerrors.CodeForbidden))
		}

		return c.Next()
	}
}

// RequireAPIKey guards service-to-service endpoints with a static key.
func RequireAPIKey(apiKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		provided := c.Get("x-api-key")
		if provided == "" {
			return RespondError(c, goerrors.New(MsgAPIKeyMissing, goerrors.CategoryAuth).
				WithTextCode(TextCodeAPIKeyMissing).
				WithCode(goerrors.CodeUnauthorized))
		}

		if apiKey == "" || provided != apiKey {
			return RespondError(c, goerrors.New(MsgAPIKeyInvalid, goerrors.CategoryAuth).
				WithTextCode(TextCodeAPIKeyInvalid).
				WithCode(goerrors.CodeUnauthorized))
		}

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Protected, or nil.
// The request context is checked when the locals entry is absent, so code
// running off a plain context.Context resolves the same user.
func CurrentUser(c *fiber.Ctx) *User {
	if user, ok := c.Locals(currentUserKey).(*User); ok {
		return user
	}

	user, _ := FromContext(c.UserContext())
	return user
}

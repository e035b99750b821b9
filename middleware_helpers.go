package userapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/goliatone/go-user-api/middleware/jwtware"
)

// tokenValidatorAdapter bridges the TokenService to the jwtware contract
type tokenValidatorAdapter struct {
	tokens TokenService
}

func (a tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// NewGuard builds the route guard for protected endpoints. It holds no
// verification logic of its own; allow/deny is decided entirely by the
// token service.
func NewGuard(cfg Config, tokens TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		TokenValidator: tokenValidatorAdapter{tokens: tokens},
		ContextKey:     cfg.GetContextKey(),
		TokenLookup:    cfg.GetTokenLookup(),
		AuthScheme:     cfg.GetAuthScheme(),
	})
}

// PrincipalFromContext returns the verified claims the guard attached to the
// request, if the route was protected.
func PrincipalFromContext(c *fiber.Ctx, cfg Config) (AuthClaims, bool) {
	claims, ok := c.Locals(cfg.GetContextKey()).(AuthClaims)
	return claims, ok
}

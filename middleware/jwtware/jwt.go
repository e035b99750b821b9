package jwtware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	defaultTokenLookup       = "header:" + fiber.HeaderAuthorization
	ErrJWTMissingOrMalformed = errors.New("missing or malformed JWT")
)

// TokenValidator interface for validating tokens without import cycles.
// This mirrors the TokenService.Validate method from the root package.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// AuthClaims interface for structured claims without import cycles.
// This mirrors the AuthClaims interface from the root package.
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
}

type Config struct {
	// Filter defines a function to skip the middleware
	Filter func(*fiber.Ctx) bool
	// SuccessHandler runs once the token has been validated; defaults to Next
	SuccessHandler fiber.Handler
	// ErrorHandler short-circuits the request when extraction or validation
	// fails; the default rejects with 401 before any handler runs
	ErrorHandler func(*fiber.Ctx, error) error
	// ContextKey is the locals key the claims are stored under
	ContextKey string
	// TokenLookup is a comma separated list of "source:name" pairs, e.g.
	// "header:Authorization" or "header:Authorization,cookie:token"
	TokenLookup string
	// AuthScheme is the scheme prefix stripped from header values
	AuthScheme string
	// TokenValidator is required for token validation
	TokenValidator TokenValidator
}

type jwtExtractor func(c *fiber.Ctx) (string, error)

// New returns a guard middleware with two outcomes per request: allow (claims
// attached, request proceeds) or deny (request rejected before business
// logic). Verification itself is fully delegated to the TokenValidator.
func New(config ...Config) fiber.Handler {
	cfg := GetDefaultConfig(config...)
	extractors := cfg.getExtractors()

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := ExtractRawToken(c, extractors)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.TokenValidator.Validate(raw)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		return cfg.SuccessHandler(c)
	}
}

// ClaimsFromContext returns the claims attached by the middleware, if any
func ClaimsFromContext(c *fiber.Ctx, key string) (AuthClaims, bool) {
	claims, ok := c.Locals(key).(AuthClaims)
	return claims, ok
}

// ExtractRawToken runs the extractors in order until one yields a token
func ExtractRawToken(c *fiber.Ctx, extractors []jwtExtractor) (string, error) {
	var raw string
	var err error

	for _, extractor := range extractors {
		raw, err = extractor(c)
		if raw != "" && err == nil {
			break
		}
	}

	if raw == "" && err == nil {
		err = ErrJWTMissingOrMalformed
	}

	return raw, err
}

func GetDefaultConfig(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		// missing, malformed, and expired all deny with 401; the guard never
		// lets an unverified request reach a handler
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			message := "Invalid or expired token"
			if err.Error() == ErrJWTMissingOrMalformed.Error() {
				message = ErrJWTMissingOrMalformed.Error()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": fiber.Map{"message": message},
			})
		}
	}

	if cfg.TokenValidator == nil {
		panic("AUTH: JWT middleware configuration: TokenValidator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "user"
	}

	if cfg.TokenLookup == "" {
		cfg.TokenLookup = defaultTokenLookup
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	return cfg
}

func (cfg *Config) getExtractors() []jwtExtractor {
	extractors := []jwtExtractor{}

	for _, lookup := range strings.Split(cfg.TokenLookup, ",") {
		parts := strings.SplitN(strings.TrimSpace(lookup), ":", 2)
		if len(parts) != 2 {
			continue
		}

		source, name := parts[0], parts[1]
		switch source {
		case "header":
			extractors = append(extractors, jwtFromHeader(name, cfg.AuthScheme))
		case "query":
			extractors = append(extractors, jwtFromQuery(name))
		case "cookie":
			extractors = append(extractors, jwtFromCookie(name))
		case "param":
			extractors = append(extractors, jwtFromParam(name))
		}
	}

	return extractors
}

// jwtFromHeader returns a function that extracts token from the request header
func jwtFromHeader(header string, authScheme string) jwtExtractor {
	return func(c *fiber.Ctx) (string, error) {
		auth := c.Get(header)
		l := len(authScheme)
		if l == 0 {
			if auth == "" {
				return "", ErrJWTMissingOrMalformed
			}
			return auth, nil
		}
		if len(auth) > l+1 && strings.EqualFold(auth[:l], authScheme) {
			return strings.TrimSpace(auth[l+1:]), nil
		}
		return "", ErrJWTMissingOrMalformed
	}
}

// jwtFromQuery returns a function that extracts token from the query string
func jwtFromQuery(param string) jwtExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Query(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromCookie returns a function that extracts token from the named cookie
func jwtFromCookie(name string) jwtExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Cookies(name)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

// jwtFromParam returns a function that extracts token from a route param
func jwtFromParam(param string) jwtExtractor {
	return func(c *fiber.Ctx) (string, error) {
		token := c.Params(param)
		if token == "" {
			return "", ErrJWTMissingOrMalformed
		}
		return token, nil
	}
}

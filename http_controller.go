package userapi

import (
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// UserController exposes the HTTP surface for the user service
type UserController struct {
	Debug    bool
	Logger   Logger
	Service  *UserService
	Provider IdentityProvider
	Tokens   TokenService
}

type UserControllerOption func(*UserController) *UserController

func NewUserController(service *UserService, provider IdentityProvider, tokens TokenService, opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger:   defLogger{},
		Service:  service,
		Provider: provider,
		Tokens:   tokens,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing UserService in user controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in user controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Logger = logger
		return c
	}
}

func WithControllerDebug(debug bool) UserControllerOption {
	return func(c *UserController) *UserController {
		c.Debug = debug
		return c
	}
}

// RegisterUserRoutes wires the controller into the app. Creation and login
// are open; lookup, update, and delete sit behind the guard.
func RegisterUserRoutes(app fiber.Router, controller *UserController, guard fiber.Handler) {
	app.Post("/auth/login", controller.Login)

	app.Post("/users", controller.Create)
	app.Get("/users/:email", guard, controller.FindByEmail)
	app.Patch("/users/:id", guard, controller.Update)
	app.Delete("/users/:id", guard, controller.Remove)
}

// CreateUserRequest payload
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Name,
			validation.Required,
		),
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// UpdateUserRequest payload; nil fields are left untouched
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Validate will run validation rules
func (r UpdateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			is.Email,
		),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token string `json:"token"`
}

func (a *UserController) Create(ctx *fiber.Ctx) error {
	payload := new(CreateUserRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.renderError(ctx, errors.Wrap(err, errors.CategoryValidation, "could not parse user payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	user, err := a.Service.Create(ctx.Context(), payload.Name, payload.Email, payload.Password)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(user)
}

func (a *UserController) FindByEmail(ctx *fiber.Ctx) error {
	email := ctx.Params("email")
	if decoded, err := url.PathUnescape(email); err == nil {
		email = decoded
	}

	user, err := a.Service.FindByEmail(ctx.Context(), email)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(user)
}

func (a *UserController) Update(ctx *fiber.Ctx) error {
	raw := ctx.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		// ids are opaque; anything unparseable can never match a record
		return a.renderError(ctx, NewUserNotFoundByID(raw))
	}

	payload := new(UpdateUserRequest)
	if err := ctx.BodyParser(payload); err != nil {
		return a.renderError(ctx, errors.Wrap(err, errors.CategoryValidation, "could not parse user payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	user, err := a.Service.Update(ctx.Context(), id, UserPatch{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(user)
}

func (a *UserController) Remove(ctx *fiber.Ctx) error {
	raw := ctx.Params("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return a.renderError(ctx, NewUserNotFoundByID(raw))
	}

	ack, err := a.Service.Remove(ctx.Context(), id)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(ack)
}

func (a *UserController) Login(ctx *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := ctx.BodyParser(payload); err != nil {
		return a.renderError(ctx, errors.Wrap(err, errors.CategoryValidation, "could not parse login payload").
			WithCode(errors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return a.renderError(ctx, errors.Wrap(err, errors.CategoryValidation, err.Error()).
			WithCode(errors.CodeBadRequest))
	}

	identity, err := a.Provider.VerifyIdentity(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return a.renderError(ctx, err)
	}

	token, err := a.Tokens.Generate(identity)
	if err != nil {
		return a.renderError(ctx, err)
	}

	return ctx.JSON(LoginResponse{Token: token})
}

func (a *UserController) renderError(ctx *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	if a.Debug {
		a.Logger.Debug("request error", "error", print.MaybePrettyJSON(richErr))
	}

	status := richErr.Code
	if status == 0 {
		switch richErr.Category {
		case errors.CategoryAuth, errors.CategoryAuthz:
			status = fiber.StatusUnauthorized
		case errors.CategoryNotFound:
			status = fiber.StatusNotFound
		case errors.CategoryConflict:
			status = fiber.StatusConflict
		case errors.CategoryValidation:
			status = fiber.StatusBadRequest
		default:
			status = fiber.StatusInternalServerError
		}
	}

	if status >= fiber.StatusInternalServerError {
		a.Logger.Error("request failed", "status", status, "error", richErr.Message)
	}

	return ctx.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

package accounts

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// Controller exposes the account operations over HTTP.
type Controller struct {
	Debug    bool
	Logger   Logger
	Repo     RepositoryManager
	Commands *Commands
	Auther   *Auther
	Config   Config
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

func NewController(repo RepositoryManager, commands *Commands, auther *Auther, cfg Config, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:   defLogger{},
		Repo:     repo,
		Commands: commands,
		Auther:   auther,
		Config:   cfg,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in accounts controller...")
	}

	if c.Commands == nil {
		panic("Missing Commands in accounts controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in accounts controller...")
	}

	return c
}

// RegisterRoutes mounts every route on the app.
func (a *Controller) RegisterRoutes(app *fiber.App) {
	auth := app.Group("/auth")
	auth.Post("/register", a.Register)
	auth.Post("/verify-email", a.VerifyEmail)
	auth.Post("/resend-otp", a.ResendOTP)
	auth.Post("/login", a.Login)
	auth.Post("/logout", a.Logout)
	auth.Post("/forgot-password", a.ForgotPassword)
	auth.Post("/reset-password", a.ResetPassword)
	auth.Post("/change-password", Protected(a.Auther, a.Config), a.ChangePassword)
	auth.Get("/validate", Protected(a.Auther, a.Config), a.ValidateSession)
	auth.Get("/user-email/:id", RequireAPIKey(a.Config.ServiceAPIKey), a.UserEmail)

	users := app.Group("/users", Protected(a.Auther, a.Config))
	users.Get("/", RequireAdmin(), a.ListUsers)
	users.Get("/profile/me", a.Me)
	users.Delete("/me", a.DeleteMe)
	users.Get("/:id", a.GetUser)
	users.Patch("/:id", RequireVerified(), a.UpdateUser)
	users.Patch("/:id/verify-aadhaar", a.VerifyAadhaar)
	users.Patch("/:id/status", RequireAdmin(), a.ChangeStatus)
	users.Delete("/:id", a.DeleteUser)
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	AadhaarNumber   string `json:"aadhaarNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will validate the payload
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.AadhaarNumber, validation.Length(12, 12), is.Digit),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(validateStringEquals(r.Password, MsgPasswordMismatch)),
		),
	)
}

func (a *Controller) Register(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	if a.Debug {
		fmt.Println("======= REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=======================")
	}

	phone := ""
	if payload.Phone != "" {
		normalized, err := normalizePhone(payload.Phone)
		if err != nil {
			return RespondError(c, err)
		}
		phone = normalized
	}

	msg := RegisterUserMessage{
		Name:          payload.Name,
		Email:         payload.Email,
		Phone:         phone,
		AadhaarNumber: payload.AadhaarNumber,
		Password:      payload.Password,
	}

	if err := a.Commands.RegisterUser.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("register user error: %v", err)
		return RespondError(c, err)
	}

	return RespondCreated(c, nil, MsgRegistered)
}

// VerifyEmailPayload is the email verification body
type VerifyEmailPayload struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// Validate will validate the payload
func (r VerifyEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Length(OTPLength, OTPLength), is.Digit),
	)
}

func (a *Controller) VerifyEmail(c *fiber.Ctx) error {
	payload := new(VerifyEmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	var verified *User
	msg := VerifyOTPMessage{
		Email: payload.Email,
		Code:  payload.OTP,
		OnVerified: func(user *User) {
			verified = user
		},
	}

	if err := a.Commands.VerifyOTP.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("verify email error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, verified, MsgEmailVerified)
}

// EmailPayload is a body holding a single email address
type EmailPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func (a *Controller) ResendOTP(c *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	msg := IssueOTPMessage{Email: payload.Email}
	if err := a.Commands.IssueOTP.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("resend otp error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, nil, MsgOTPResent)
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *Controller) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	token, user, err := a.Auther.Login(c.Context(), payload.Email, payload.Password)
	if err != nil {
		return RespondError(c, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     a.Config.GetContextKey(),
		Value:    token,
		Expires:  time.Now().Add(time.Duration(a.Config.GetTokenExpiration()) * time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return RespondOK(c, fiber.Map{
		"access_token": token,
		"user":         user,
	}, MsgLoggedIn)
}

func (a *Controller) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     a.Config.GetContextKey(),
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return RespondOK(c, nil, MsgLoggedOut)
}

func (a *Controller) ForgotPassword(c *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	msg := InitializePasswordResetMessage{Email: payload.Email}
	if err := a.Commands.InitializeReset.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("forgot password error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, nil, MsgIfEmailRegistered)
}

// ResetPasswordPayload is the password reset body
type ResetPasswordPayload struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.OTP, validation.Required, validation.Length(OTPLength, OTPLength), is.Digit),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(validateStringEquals(r.Password, MsgPasswordMismatch)),
		),
	)
}

func (a *Controller) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	msg := FinalizePasswordResetMessage{
		Email:           payload.Email,
		Code:            payload.OTP,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
	}

	if err := a.Commands.FinalizeReset.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("reset password error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, nil, MsgPasswordReset)
}

// ChangePasswordPayload is the password change body
type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate will validate the payload
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(8, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(validateStringEquals(r.NewPassword, MsgPasswordMismatch)),
		),
	)
}

func (a *Controller) ChangePassword(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	payload := new(ChangePasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	msg := ChangePasswordMessage{
		UserID:          user.ID,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
		ConfirmPassword: payload.ConfirmPassword,
	}

	if err := a.Commands.ChangePassword.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("change password error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, nil, MsgPasswordChanged)
}

// ValidateSession confirms the presented credential still maps to a live
// account and echoes the session back.
func (a *Controller) ValidateSession(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	data := fiber.Map{"user": user}

	if claims, ok := GetClaims(c.UserContext()); ok {
		data["session"] = fiber.Map{
			"subject":    claims.Subject(),
			"issued_at":  claims.IssuedAt(),
			"expires_at": claims.Expires(),
		}
	}

	return RespondOK(c, data, MsgSessionValid)
}

// UserEmail resolves a user id to an email for internal services.
func (a *Controller) UserEmail(c *fiber.Ctx) error {
	id, err := a.paramUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}

	user, err := a.Repo.Users().GetByUserID(c.Context(), id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(c, ErrUserNotFound)
		}
		a.Logger.Error("user email lookup error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, fiber.Map{"email": user.Email}, MsgUserFetched)
}

func (a *Controller) ListUsers(c *fiber.Ctx) error {
	users, err := a.Repo.Users().ListAll(c.Context())
	if err != nil {
		a.Logger.Error("list users error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, users, MsgUsersFetched)
}

func (a *Controller) Me(c *fiber.Ctx) error {
	user := CurrentUser(c)
	if user == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	return RespondOK(c, user, MsgUserFetched)
}

func (a *Controller) GetUser(c *fiber.Ctx) error {
	id, err := a.paramUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}

	user, err := a.Repo.Users().GetByUserID(c.Context(), id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(c, ErrUserNotFound)
		}
		a.Logger.Error("get user error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, user, MsgUserFetched)
}

// UpdateUserPayload is the partial profile update body. Absent fields keep
// their stored values.
type UpdateUserPayload struct {
	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	AadhaarNumber     *string `json:"aadhaarNumber"`
	ProfilePictureURL *string `json:"profilePictureUrl"`
}

// Validate will validate the payload
func (r UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 200)),
		validation.Field(&r.AadhaarNumber, validation.Length(12, 12), is.Digit),
	)
}

func (a *Controller) UpdateUser(c *fiber.Ctx) error {
	actor := CurrentUser(c)
	if actor == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	id, err := a.paramUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}

	payload := new(UpdateUserPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	var updated *User
	msg := UpdateUserMessage{
		UserID:            id,
		ActorID:           actor.ID,
		IsAdmin:           actor.IsAdmin(),
		Name:              payload.Name,
		Email:             payload.Email,
		Phone:             payload.Phone,
		AadhaarNumber:     payload.AadhaarNumber,
		ProfilePictureURL: payload.ProfilePictureURL,
		OnUpdated: func(user *User) {
			updated = user
		},
	}

	if err := a.Commands.UpdateUser.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("update user error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, updated, MsgUserUpdated)
}

func (a *Controller) VerifyAadhaar(c *fiber.Ctx) error {
	actor := CurrentUser(c)
	if actor == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	id, err := a.paramUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}

	if actor.ID != id && !actor.IsAdmin() {
		return RespondError(c, ErrUnauthorizedUpdate)
	}

	var verified *User
	msg := VerifyAadhaarMessage{
		UserID: id,
		OnVerified: func(user *User) {
			verified = user
		},
	}

	if err := a.Commands.VerifyAadhaar.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("verify aadhaar error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, verified, MsgAadhaarVerified)
}

// ChangeStatusPayload is the status change body
type ChangeStatusPayload struct {
	Status string `json:"status"`
}

// Validate will validate the payload
func (r ChangeStatusPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required),
	)
}

func (a *Controller) ChangeStatus(c *fiber.Ctx) error {
	id, err := a.paramUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}

	payload := new(ChangeStatusPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.badRequest(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.validationError(c, err)
	}

	var changed *User
	msg := ChangeAccountStatusMessage{
		UserID: id,
		Status: payload.Status,
		OnChanged: func(user *User) {
			changed = user
		},
	}

	if err := a.Commands.ChangeAccountStatus.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("change status error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, changed, MsgStatusChanged)
}

func (a *Controller) DeleteUser(c *fiber.Ctx) error {
	actor := CurrentUser(c)
	if actor == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	id, err := a.paramUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}

	if actor.ID != id && !actor.IsAdmin() {
		return RespondError(c, ErrUnauthorizedUpdate)
	}

	msg := DeleteUserMessage{UserID: id}
	if err := a.Commands.DeleteUser.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("delete user error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, nil, MsgUserDeleted)
}

// DeleteMe removes the authenticated user's own account.
func (a *Controller) DeleteMe(c *fiber.Ctx) error {
	actor := CurrentUser(c)
	if actor == nil {
		return RespondError(c, ErrUnableToFindSession)
	}

	msg := DeleteUserMessage{UserID: actor.ID}
	if err := a.Commands.DeleteUser.Execute(c.Context(), msg); err != nil {
		a.Logger.Error("delete user error: %v", err)
		return RespondError(c, err)
	}

	return RespondOK(c, nil, MsgUserDeleted)
}

func (a *Controller) paramUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

func (a *Controller) badRequest(c *fiber.Ctx, err error) error {
	a.Logger.Error("parse payload error: %v", err)
	return RespondError(c, goerrors.New("could not parse request body", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest))
}

func (a *Controller) validationError(c *fiber.Ctx, err error) error {
	return RespondError(c, goerrors.New(err.Error(), goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest))
}

// validateStringEquals builds an ozzo rule asserting equality with another
// field.
func validateStringEquals(expected, message string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != expected {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}

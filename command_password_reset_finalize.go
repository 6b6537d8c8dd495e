package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type FinalizePasswordResetMessage struct {
	Email           string `json:"email"`
	Code            string `json:"otp"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (e FinalizePasswordResetMessage) Type() string { return "password.reset_finalize" }

// FinalizePasswordResetHandler redeems a reset code and stores the new
// credential. Consuming the code and swapping the password happen in one
// transaction, the code cannot be burned without the password changing.
type FinalizePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, notifier Notifier) *FinalizePasswordResetHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &FinalizePasswordResetHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *FinalizePasswordResetHandler) WithLogger(logger Logger) *FinalizePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	if event.Password != event.ConfirmPassword {
		return ErrPasswordMismatch
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load user")
		}

		token, err := h.repo.VerificationTokens().FindMatchTx(ctx, tx, user.ID, event.Code, TokenPurposePasswordReset)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrOTPInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load reset code")
		}

		if token.Expired(time.Now()) {
			return ErrOTPExpired
		}

		passwordHash, err := HashPassword(event.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
		}

		if err := h.repo.VerificationTokens().ConsumeTx(ctx, tx, token.ID); err != nil {
			return err
		}

		if err := h.repo.Users().ResetPasswordTx(ctx, tx, user.ID, passwordHash); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user password")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	notification := NewEmailNotification(TemplatePasswordChanged, user.Email, map[string]any{
		"name": user.Name,
	})
	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Warn("password reset notification error: %v", err)
	}

	return nil
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangePasswordMessage struct {
	UserID          uuid.UUID `json:"-"`
	CurrentPassword string    `json:"currentPassword"`
	NewPassword     string    `json:"newPassword"`
	ConfirmPassword string    `json:"confirmPassword"`
}

func (e ChangePasswordMessage) Type() string { return "password.change" }

// ChangePasswordHandler swaps the credential of an authenticated user after
// re-verifying the current password.
type ChangePasswordHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
}

func NewChangePasswordHandler(repo RepositoryManager, notifier Notifier) *ChangePasswordHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ChangePasswordHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *ChangePasswordHandler) WithLogger(logger Logger) *ChangePasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangePasswordHandler) Execute(ctx context.Context, event ChangePasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangePasswordHandler) execute(ctx context.Context, event ChangePasswordMessage) error {
	if event.NewPassword != event.ConfirmPassword {
		return ErrPasswordMismatch
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := h.repo.Users().GetByUserIDTx(ctx, tx, event.UserID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load user")
		}

		user, err = h.repo.Users().GetCredentialsTx(ctx, tx, record.Email)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load credentials")
		}

		if err := ComparePasswordAndHash(event.CurrentPassword, user.PasswordHash); err != nil {
			return ErrCurrentPasswordIncorrect
		}

		passwordHash, err := HashPassword(event.NewPassword)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid new password provided")
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
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password change transaction failed")
	}

	notification := NewEmailNotification(TemplatePasswordChanged, user.Email, map[string]any{
		"name": user.Name,
	})

	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Warn("password change notification error: %v", err)
	}

	return nil
}

package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email"`
}

func (e InitializePasswordResetMessage) Type() string { return "password.reset_initialize" }

// InitializePasswordResetHandler issues a password reset code. Unknown
// emails succeed silently so the endpoint cannot be used to enumerate
// accounts.
type InitializePasswordResetHandler struct {
	repo     RepositoryManager
	notifier Notifier
	otpTTL   time.Duration
	logger   Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, notifier Notifier, cfg Config) *InitializePasswordResetHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &InitializePasswordResetHandler{
		repo:     repo,
		notifier: notifier,
		otpTTL:   cfg.GetOTPTTL(),
		logger:   defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User
	var otp *issuedOTP

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if goerrors.IsNotFound(err) {
				// Same outcome as success, observable from outside.
				user = nil
				return nil
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load user")
		}

		otp, err = issueOTPTx(ctx, tx, h.repo, user.ID, TokenPurposePasswordReset, h.otpTTL)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "password reset initialization failed")
	}

	if user == nil || otp == nil {
		return nil
	}

	notification := NewEmailNotification(TemplatePasswordResetOTP, user.Email, map[string]any{
		"name":    user.Name,
		"otpCode": otp.Code,
	})

	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Warn("password reset notification error: %v", err)
	}

	return nil
}

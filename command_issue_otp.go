package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type IssueOTPMessage struct {
	Email string `json:"email"`
}

func (e IssueOTPMessage) Type() string { return "user.issue_otp" }

// IssueOTPHandler re-sends the email verification code for an unverified
// account.
type IssueOTPHandler struct {
	repo     RepositoryManager
	notifier Notifier
	otpTTL   time.Duration
	logger   Logger
}

func NewIssueOTPHandler(repo RepositoryManager, notifier Notifier, cfg Config) *IssueOTPHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &IssueOTPHandler{
		repo:     repo,
		notifier: notifier,
		otpTTL:   cfg.GetOTPTTL(),
		logger:   defLogger{},
	}
}

func (h *IssueOTPHandler) WithLogger(logger Logger) *IssueOTPHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *IssueOTPHandler) Execute(ctx context.Context, event IssueOTPMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during verification code issue",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *IssueOTPHandler) execute(ctx context.Context, event IssueOTPMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User
	var otp *issuedOTP

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByEmailTx(ctx, tx, event.Email)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load user")
		}

		if user.EmailVerified {
			return ErrEmailAlreadyVerified
		}

		otp, err = issueOTPTx(ctx, tx, h.repo, user.ID, TokenPurposeEmail, h.otpTTL)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "verification code issue transaction failed")
	}

	notification := NewEmailNotification(TemplateOTPVerification, user.Email, map[string]any{
		"name":    user.Name,
		"otpCode": otp.Code,
	})

	// The token is committed either way; a delivery failure is reported so
	// the caller can retry the send without invalidating the code.
	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Warn("verification code notification error: %v", err)
		return ErrNotificationFailed
	}

	return nil
}

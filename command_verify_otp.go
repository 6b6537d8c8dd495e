package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type VerifyOTPMessage struct {
	Email string `json:"email"`
	Code  string `json:"otp"`

	// OnVerified receives the activated user after the transaction commits.
	OnVerified func(user *User) `json:"-"`
}

func (e VerifyOTPMessage) Type() string { return "user.verify_otp" }

// VerifyOTPHandler redeems an email verification code, marking the account
// verified and active.
type VerifyOTPHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewVerifyOTPHandler(repo RepositoryManager) *VerifyOTPHandler {
	return &VerifyOTPHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *VerifyOTPHandler) WithLogger(logger Logger) *VerifyOTPHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyOTPHandler) Execute(ctx context.Context, event VerifyOTPMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during email verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyOTPHandler) execute(ctx context.Context, event VerifyOTPMessage) error {
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

		if user.EmailVerified {
			return ErrEmailAlreadyVerified
		}

		token, err := h.repo.VerificationTokens().FindMatchTx(ctx, tx, user.ID, event.Code, TokenPurposeEmail)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrOTPInvalid
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load verification code")
		}

		if token.Expired(time.Now()) {
			return ErrOTPExpired
		}

		if err := h.repo.VerificationTokens().ConsumeTx(ctx, tx, token.ID); err != nil {
			return err
		}

		user, err = h.repo.Users().ActivateTx(ctx, tx, user.ID)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not activate user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "email verification transaction failed")
	}

	if event.OnVerified != nil {
		event.OnVerified(user)
	}

	return nil
}

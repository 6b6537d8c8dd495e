package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	AadhaarNumber string `json:"aadhaarNumber"`
	Password      string `json:"password"`

	// UseHashid derives the user ID from the email so imports stay idempotent.
	UseHashid bool `json:"use_hashid"`

	// OnRegistered runs inside the transaction with the stored user.
	OnRegistered func(user *User) error `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserHandler struct {
	repo     RepositoryManager
	notifier Notifier
	otpTTL   time.Duration
	logger   Logger
}

func NewRegisterUserHandler(repo RepositoryManager, notifier Notifier, cfg Config) *RegisterUserHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &RegisterUserHandler{
		repo:     repo,
		notifier: notifier,
		otpTTL:   cfg.GetOTPTTL(),
		logger:   defLogger{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

// execute creates a pending user and issues an email verification code. A
// registration against an unverified email re-issues the code instead of
// failing, so a user who lost the first email can simply register again.
func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User
	var otp *issuedOTP

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := h.repo.Users().GetCredentialsTx(ctx, tx, event.Email)
		if err == nil {
			if existing.EmailVerified {
				return ErrEmailExists
			}

			// Unverified duplicate: refresh the code, leave the record alone.
			user = existing
			otp, err = issueOTPTx(ctx, tx, h.repo, existing.ID, TokenPurposeEmail, h.otpTTL)
			return err
		}

		if !goerrors.IsNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not check existing registration")
		}

		if event.Phone != "" {
			taken, err := h.repo.Users().PhoneTakenTx(ctx, tx, event.Phone, uuid.Nil)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not check phone number")
			}
			if taken {
				return ErrPhoneExists
			}
		}

		if event.AadhaarNumber != "" {
			taken, err := h.repo.Users().AadhaarTakenTx(ctx, tx, event.AadhaarNumber, uuid.Nil)
			if err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "could not check aadhaar number")
			}
			if taken {
				return ErrAadhaarExists
			}
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user = &User{
			Name:          event.Name,
			Email:         event.Email,
			Phone:         event.Phone,
			AadhaarNumber: event.AadhaarNumber,
			PasswordHash:  hash,
		}

		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		if otp, err = issueOTPTx(ctx, tx, h.repo, user.ID, TokenPurposeEmail, h.otpTTL); err != nil {
			return err
		}

		if event.OnRegistered != nil {
			return event.OnRegistered(user)
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	h.notify(ctx, user, otp)

	return nil
}

func (h *RegisterUserHandler) notify(ctx context.Context, user *User, otp *issuedOTP) {
	if user == nil || otp == nil {
		return
	}

	notification := NewEmailNotification(TemplateOTPVerification, user.Email, map[string]any{
		"name":    user.Name,
		"otpCode": otp.Code,
	})

	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Warn("registration notification error: %v", err)
	}
}

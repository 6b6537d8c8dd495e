package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type VerifyAadhaarMessage struct {
	UserID uuid.UUID `json:"-"`

	// OnVerified receives the updated record after the transaction commits.
	OnVerified func(user *User) `json:"-"`
}

func (e VerifyAadhaarMessage) Type() string { return "user.verify_aadhaar" }

// VerifyAadhaarHandler marks the stored aadhaar number verified. The actual
// document check happens upstream, this records its outcome.
type VerifyAadhaarHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewVerifyAadhaarHandler(repo RepositoryManager) *VerifyAadhaarHandler {
	return &VerifyAadhaarHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *VerifyAadhaarHandler) WithLogger(logger Logger) *VerifyAadhaarHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *VerifyAadhaarHandler) Execute(ctx context.Context, event VerifyAadhaarMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during aadhaar verification",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *VerifyAadhaarHandler) execute(ctx context.Context, event VerifyAadhaarMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var user *User

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		user, err = h.repo.Users().GetByUserIDTx(ctx, tx, event.UserID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load user")
		}

		if !user.EmailVerified {
			return ErrUnverifiedAccountUpdate
		}

		if user.AadhaarNumber == "" {
			return ErrAadhaarNotProvided
		}

		if user.AadhaarVerified {
			return nil
		}

		user.AadhaarVerified = true
		user, err = h.repo.Users().UpdateTx(ctx, tx, user, repository.UpdateByID(user.ID.String()))
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not store user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "aadhaar verification transaction failed")
	}

	if event.OnVerified != nil {
		event.OnVerified(user)
	}

	return nil
}

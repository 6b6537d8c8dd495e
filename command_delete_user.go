package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DeleteUserMessage struct {
	UserID uuid.UUID `json:"-"`
}

func (e DeleteUserMessage) Type() string { return "user.delete" }

// DeleteUserHandler removes an account and every verification token it
// owns.
type DeleteUserHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewDeleteUserHandler(repo RepositoryManager) *DeleteUserHandler {
	return &DeleteUserHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *DeleteUserHandler) WithLogger(logger Logger) *DeleteUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *DeleteUserHandler) Execute(ctx context.Context, event DeleteUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteUserHandler) execute(ctx context.Context, event DeleteUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByUserIDTx(ctx, tx, event.UserID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not load user")
		}

		if err := h.repo.VerificationTokens().PurgeForUserTx(ctx, tx, user.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not purge verification tokens")
		}

		if err := h.repo.Users().DeleteByIDTx(ctx, tx, user.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user deletion transaction failed")
	}

	return nil
}

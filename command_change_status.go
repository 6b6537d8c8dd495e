package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ChangeAccountStatusMessage struct {
	UserID uuid.UUID `json:"-"`
	Status string    `json:"status"`

	// OnChanged receives the updated record after the transaction commits.
	OnChanged func(user *User) `json:"-"`
}

func (e ChangeAccountStatusMessage) Type() string { return "user.change_status" }

// ChangeAccountStatusHandler moves an account through its lifecycle,
// enforcing the transition rules.
type ChangeAccountStatusHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewChangeAccountStatusHandler(repo RepositoryManager) *ChangeAccountStatusHandler {
	return &ChangeAccountStatusHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *ChangeAccountStatusHandler) WithLogger(logger Logger) *ChangeAccountStatusHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ChangeAccountStatusHandler) Execute(ctx context.Context, event ChangeAccountStatusMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account status change",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ChangeAccountStatusHandler) execute(ctx context.Context, event ChangeAccountStatusMessage) error {
	target := UserStatus(event.Status)
	if !ValidStatus(event.Status) {
		return ErrInvalidStatus
	}

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

		if err := ValidateTransition(user, target); err != nil {
			return err
		}

		if user.Status == target {
			return nil
		}

		user, err = h.repo.Users().UpdateStatusTx(ctx, tx, user.ID, target)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not store user status")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account status transaction failed")
	}

	if event.OnChanged != nil {
		event.OnChanged(user)
	}

	return nil
}

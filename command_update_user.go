package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

type UpdateUserMessage struct {
	UserID  uuid.UUID `json:"-"`
	ActorID uuid.UUID `json:"-"`
	IsAdmin bool      `json:"-"`

	Name              *string `json:"name"`
	Email             *string `json:"email"`
	Phone             *string `json:"phone"`
	AadhaarNumber     *string `json:"aadhaarNumber"`
	ProfilePictureURL *string `json:"profilePictureUrl"`

	// OnUpdated receives the stored record after the transaction commits.
	OnUpdated func(user *User) `json:"-"`
}

func (e UpdateUserMessage) Type() string { return "user.update" }

// UpdateUserHandler applies a partial profile update. Only the fields
// present in the message change, everything else keeps its stored value.
type UpdateUserHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
}

func NewUpdateUserHandler(repo RepositoryManager, notifier Notifier) *UpdateUserHandler {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &UpdateUserHandler{
		repo:     repo,
		notifier: notifier,
		logger:   defLogger{},
	}
}

func (h *UpdateUserHandler) WithLogger(logger Logger) *UpdateUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *UpdateUserHandler) Execute(ctx context.Context, event UpdateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateUserHandler) execute(ctx context.Context, event UpdateUserMessage) error {
	if event.ActorID != event.UserID && !event.IsAdmin {
		return ErrUnauthorizedUpdate
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

		if !user.EmailVerified {
			return ErrUnverifiedAccountUpdate
		}

		if event.Email != nil && *event.Email != user.Email {
			return ErrEmailImmutable
		}

		if event.Name != nil {
			user.Name = *event.Name
		}

		if event.Phone != nil {
			phone, err := normalizePhone(*event.Phone)
			if err != nil {
				return err
			}

			if phone != user.Phone {
				taken, err := h.repo.Users().PhoneTakenTx(ctx, tx, phone, user.ID)
				if err != nil {
					return goerrors.Wrap(err, goerrors.CategoryInternal, "could not check phone number")
				}
				if taken {
					return ErrPhoneExists
				}
			}

			user.Phone = phone
		}

		if event.AadhaarNumber != nil {
			aadhaar := *event.AadhaarNumber
			if aadhaar != user.AadhaarNumber {
				taken, err := h.repo.Users().AadhaarTakenTx(ctx, tx, aadhaar, user.ID)
				if err != nil {
					return goerrors.Wrap(err, goerrors.CategoryInternal, "could not check aadhaar number")
				}
				if taken {
					return ErrAadhaarExists
				}

				// A new number invalidates any previous verification.
				user.AadhaarNumber = aadhaar
				user.AadhaarVerified = false
			}
		}

		if event.ProfilePictureURL != nil {
			user.ProfilePictureURL = *event.ProfilePictureURL
		}

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
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user update transaction failed")
	}

	notification := NewEmailNotification(TemplateUserDetailsUpdate, user.Email, map[string]any{
		"name": user.Name,
	})

	if err := h.notifier.Send(ctx, notification); err != nil {
		h.logger.Warn("user update notification error: %v", err)
	}

	if event.OnUpdated != nil {
		event.OnUpdated(user)
	}

	return nil
}

// normalizePhone parses and formats a phone number in E.164. Numbers
// without a country code are rejected.
func normalizePhone(raw string) (string, error) {
	parsed, err := phonenumbers.Parse(raw, "")
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid phone number").
			WithCode(goerrors.CodeBadRequest)
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

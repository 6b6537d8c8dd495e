package accounts

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type VerificationTokens interface {
	repository.Repository[*VerificationToken]

	// GetLiveTx returns the single unconsumed token for a user and purpose.
	GetLiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, purpose TokenPurpose) (*VerificationToken, error)
	// FindMatchTx returns the unconsumed token matching the submitted code.
	FindMatchTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string, purpose TokenPurpose) (*VerificationToken, error)
	// IssueTx overwrites the live token for the user and purpose, or creates
	// one when none exists. At most one live token per (user, purpose).
	IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string, purpose TokenPurpose, expiresAt time.Time) (*VerificationToken, error)
	// ConsumeTx marks the token used. It fails with ErrOTPInvalid when the
	// token was already consumed by a concurrent redemption.
	ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	// PurgeForUserTx removes every token belonging to the user.
	PurgeForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
}

type verificationTokens struct {
	repository.Repository[*VerificationToken]
	db *bun.DB
}

var _ VerificationTokens = (*verificationTokens)(nil)

func NewVerificationTokensRepository(db *bun.DB) VerificationTokens {
	repo := repository.NewRepository[*VerificationToken](db, repository.ModelHandlers[*VerificationToken]{
		NewRecord: func() *VerificationToken { return &VerificationToken{} },
		GetID: func(t *VerificationToken) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *VerificationToken, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &verificationTokens{
		Repository: repo,
		db:         db,
	}
}

func (r *verificationTokens) GetLiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, purpose TokenPurpose) (*VerificationToken, error) {
	record := &VerificationToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID.String()).
		Where("?TableAlias.type = ?", purpose).
		Where("?TableAlias.is_used = FALSE").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
					"type":    string(purpose),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *verificationTokens) FindMatchTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string, purpose TokenPurpose) (*VerificationToken, error) {
	record := &VerificationToken{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.user_id = ?", userID.String()).
		Where("?TableAlias.token = ?", code).
		Where("?TableAlias.type = ?", purpose).
		Where("?TableAlias.is_used = FALSE").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"user_id": userID.String(),
					"type":    string(purpose),
				})
		}
		return nil, err
	}

	return record, nil
}

func (r *verificationTokens) IssueTx(ctx context.Context, tx bun.IDB, userID uuid.UUID, code string, purpose TokenPurpose, expiresAt time.Time) (*VerificationToken, error) {
	existing, err := r.GetLiveTx(ctx, tx, userID, purpose)
	if err == nil {
		existing.Token = code
		existing.ExpiresAt = expiresAt
		return r.Repository.UpdateTx(ctx, tx, existing, repository.UpdateByID(existing.ID.String()))
	}

	if !repository.IsRecordNotFound(err) {
		return nil, err
	}

	record := &VerificationToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	}

	return r.Repository.CreateTx(ctx, tx, record)
}

func (r *verificationTokens) ConsumeTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewUpdate().
		Model((*VerificationToken)(nil)).
		Set("is_used = TRUE").
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.is_used = FALSE").
		Exec(ctx)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return ErrOTPInvalid
	}

	return nil
}

func (r *verificationTokens) PurgeForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*VerificationToken)(nil)).
		Where("?TableAlias.user_id = ?", userID.String()).
		Exec(ctx)
	return err
}

package accounts

import (
	"context"
	"fmt"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ActivateUserSQL marks the account verified and live in a single statement.
var ActivateUserSQL = `UPDATE "users" AS "usr"
SET
	"is_email_verified" = TRUE,
	"status" = 'active'
WHERE
	"usr"."id" = ?
RETURNING *;`

// ResetUserPasswordSQL swaps the stored credential without touching any
// other column.
var ResetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?
WHERE
	"usr"."id" = ?
RETURNING *;`

type Users interface {
	repository.Repository[*User]

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetCredentials(ctx context.Context, email string) (*User, error)
	GetCredentialsTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByUserID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUserIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	ListAll(ctx context.Context) ([]*User, error)

	PhoneTakenTx(ctx context.Context, tx bun.IDB, phone string, exclude uuid.UUID) (bool, error)
	AadhaarTakenTx(ctx context.Context, tx bun.IDB, aadhaar string, exclude uuid.UUID) (bool, error)

	UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status UserStatus) (*User, error)
	ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx loads a user by email without the password hash.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getByColumnTx(ctx, tx, "email", email, false)
}

func (a *users) GetCredentials(ctx context.Context, email string) (*User, error) {
	return a.GetCredentialsTx(ctx, a.db, email)
}

// GetCredentialsTx loads a user by email including the password hash. Keep
// this out of anything that serializes the record back to a client.
func (a *users) GetCredentialsTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getByColumnTx(ctx, tx, "email", email, true)
}

func (a *users) GetByUserID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetByUserIDTx(ctx, a.db, id)
}

func (a *users) GetByUserIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	return a.getByColumnTx(ctx, tx, "id", id.String(), false)
}

func (a *users) getByColumnTx(ctx context.Context, tx bun.IDB, column, value string, withCredentials bool) (*User, error) {
	record := &User{}
	q := tx.NewSelect().Model(record)

	if !withCredentials {
		q.ExcludeColumn("password_hash")
	}

	err := q.
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					column: value,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) ListAll(ctx context.Context) ([]*User, error) {
	var records []*User
	err := a.db.NewSelect().
		Model(&records).
		ExcludeColumn("password_hash").
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *users) PhoneTakenTx(ctx context.Context, tx bun.IDB, phone string, exclude uuid.UUID) (bool, error) {
	return a.columnTakenTx(ctx, tx, "phone_number", phone, exclude)
}

func (a *users) AadhaarTakenTx(ctx context.Context, tx bun.IDB, aadhaar string, exclude uuid.UUID) (bool, error) {
	return a.columnTakenTx(ctx, tx, "aadhaar_number", aadhaar, exclude)
}

func (a *users) columnTakenTx(ctx context.Context, tx bun.IDB, column, value string, exclude uuid.UUID) (bool, error) {
	q := tx.NewSelect().
		Model((*User)(nil)).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value)

	if exclude != uuid.Nil {
		q.Where("?TableAlias.id != ?", exclude.String())
	}

	return q.Exists(ctx)
}

func (a *users) UpdateStatusTx(ctx context.Context, tx bun.IDB, id uuid.UUID, status UserStatus) (*User, error) {
	record := &User{
		ID:     id,
		Status: status,
	}

	return a.Repository.UpdateTx(ctx, tx, record, repository.UpdateByID(id.String()))
}

func (a *users) ActivateTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	res, err := a.Repository.RawTx(ctx, tx, ActivateUserSQL, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, ResetUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *users) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*User)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	return err
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleUser
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

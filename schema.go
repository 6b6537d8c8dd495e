package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// CreateSchema creates the tables the package owns. Safe to call on every
// boot, existing tables are left alone.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "unable to create users table")
	}

	if _, err := db.NewCreateTable().
		Model((*VerificationToken)(nil)).
		IfNotExists().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "unable to create verification_tokens table")
	}

	return nil
}

package accounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Commands bundles every handler the HTTP layer dispatches to.
type Commands struct {
	RegisterUser        *RegisterUserHandler
	IssueOTP            *IssueOTPHandler
	VerifyOTP           *VerifyOTPHandler
	InitializeReset     *InitializePasswordResetHandler
	FinalizeReset       *FinalizePasswordResetHandler
	ChangePassword      *ChangePasswordHandler
	UpdateUser          *UpdateUserHandler
	VerifyAadhaar       *VerifyAadhaarHandler
	ChangeAccountStatus *ChangeAccountStatusHandler
	DeleteUser          *DeleteUserHandler
}

// NewCommands wires every handler against the shared repository manager,
// notifier, and config.
func NewCommands(repo RepositoryManager, notifier Notifier, cfg Config) *Commands {
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	return &Commands{
		RegisterUser:        NewRegisterUserHandler(repo, notifier, cfg),
		IssueOTP:            NewIssueOTPHandler(repo, notifier, cfg),
		VerifyOTP:           NewVerifyOTPHandler(repo),
		InitializeReset:     NewInitializePasswordResetHandler(repo, notifier, cfg),
		FinalizeReset:       NewFinalizePasswordResetHandler(repo, notifier),
		ChangePassword:      NewChangePasswordHandler(repo, notifier),
		UpdateUser:          NewUpdateUserHandler(repo, notifier),
		VerifyAadhaar:       NewVerifyAadhaarHandler(repo),
		ChangeAccountStatus: NewChangeAccountStatusHandler(repo),
		DeleteUser:          NewDeleteUserHandler(repo),
	}
}

// issuedOTP carries the code generated inside a transaction out to the
// post-commit notification step.
type issuedOTP struct {
	Code      string
	ExpiresAt time.Time
}

// issueOTPTx generates a fresh code and stores it as the single live token
// for the user and purpose.
func issueOTPTx(ctx context.Context, tx bun.Tx, repo RepositoryManager, userID uuid.UUID, purpose TokenPurpose, ttl time.Duration) (*issuedOTP, error) {
	code, err := GenerateOTP()
	if err != nil {
		return nil, err
	}

	expiresAt := time.Now().Add(ttl)
	if _, err := repo.VerificationTokens().IssueTx(ctx, tx, userID, code, purpose, expiresAt); err != nil {
		return nil, err
	}

	return &issuedOTP{Code: code, ExpiresAt: expiresAt}, nil
}

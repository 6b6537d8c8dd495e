package accounts_test

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
	accounts "github.com/primesoft-in/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupRepo(t *testing.T) (accounts.RepositoryManager, *bun.DB) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = db.Exec("PRAGMA foreign_keys = ON;")
	require.NoError(t, err)

	require.NoError(t, accounts.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		_ = db.Close()
	})

	return accounts.NewRepositoryManager(db), db
}

func testConfig() accounts.Config {
	return accounts.Config{
		SigningKey:      "test-signing-key",
		TokenExpiration: 1,
		Issuer:          "accounts-test",
		Audience:        []string{"accounts-test"},
		ContextKey:      "access_token",
		AuthScheme:      "Bearer",
		OTPTTL:          15 * time.Minute,
		ServiceAPIKey:   "service-key",
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []accounts.Notification
}

func (n *recordingNotifier) Send(ctx context.Context, notification accounts.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

func (n *recordingNotifier) last(t *testing.T) accounts.Notification {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	require.NotEmpty(t, n.sent)
	return n.sent[len(n.sent)-1]
}

func (n *recordingNotifier) lastCode(t *testing.T) string {
	t.Helper()
	notification := n.last(t)
	code, ok := notification.Content["otpCode"].(string)
	require.True(t, ok, "notification should carry an otpCode")
	return code
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type testEnv struct {
	repo     accounts.RepositoryManager
	db       *bun.DB
	notifier *recordingNotifier
	commands *accounts.Commands
	auther   *accounts.Auther
	cfg      accounts.Config
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, db := setupRepo(t)
	notifier := &recordingNotifier{}
	cfg := testConfig()

	return &testEnv{
		repo:     repo,
		db:       db,
		notifier: notifier,
		commands: accounts.NewCommands(repo, notifier, cfg),
		auther:   accounts.NewAuthenticator(repo, cfg),
		cfg:      cfg,
	}
}

func (e *testEnv) register(t *testing.T, email, password string) {
	t.Helper()
	err := e.commands.RegisterUser.Execute(context.Background(), accounts.RegisterUserMessage{
		Name:     "Test User",
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
}

func (e *testEnv) verify(t *testing.T, email string) *accounts.User {
	t.Helper()

	var verified *accounts.User
	err := e.commands.VerifyOTP.Execute(context.Background(), accounts.VerifyOTPMessage{
		Email: email,
		Code:  e.notifier.lastCode(t),
		OnVerified: func(user *accounts.User) {
			verified = user
		},
	})
	require.NoError(t, err)
	require.NotNil(t, verified)
	return verified
}

func (e *testEnv) registerVerified(t *testing.T, email, password string) *accounts.User {
	t.Helper()
	e.register(t, email, password)
	return e.verify(t, email)
}

func TestRegisterUser(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.register(t, "alice@example.com", "password1234")

	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, accounts.UserStatusPending, user.Status)
	assert.False(t, user.EmailVerified)
	assert.Equal(t, accounts.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash)

	notification := env.notifier.last(t)
	assert.Equal(t, "email", notification.Type)
	assert.Equal(t, accounts.TemplateOTPVerification, notification.Template)
	assert.Equal(t, "alice@example.com", notification.Recipient)
	assert.Len(t, env.notifier.lastCode(t), accounts.OTPLength)

	token, err := env.repo.VerificationTokens().GetLiveTx(ctx, env.db, user.ID, accounts.TokenPurposeEmail)
	require.NoError(t, err)
	assert.False(t, token.IsUsed)
}

func TestRegisterUserWithHashid(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	err := env.commands.RegisterUser.Execute(ctx, accounts.RegisterUserMessage{
		Name:      "Alice",
		Email:     "alice@example.com",
		Password:  "password1234",
		UseHashid: true,
	})
	require.NoError(t, err)

	want, err := hashid.NewUUID("alice@example.com")
	require.NoError(t, err)

	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, want, user.ID)
}

func TestRegisterUserWithAadhaar(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	err := env.commands.RegisterUser.Execute(ctx, accounts.RegisterUserMessage{
		Name:          "Alice",
		Email:         "alice@example.com",
		AadhaarNumber: "123412341234",
		Password:      "password1234",
	})
	require.NoError(t, err)

	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "123412341234", user.AadhaarNumber)
	assert.False(t, user.AadhaarVerified)

	err = env.commands.RegisterUser.Execute(ctx, accounts.RegisterUserMessage{
		Name:          "Bob",
		Email:         "bob@example.com",
		AadhaarNumber: "123412341234",
		Password:      "password1234",
	})
	assert.ErrorIs(t, err, accounts.ErrAadhaarExists)
}

func TestRegisterVerifiedDuplicate(t *testing.T) {
	env := setupEnv(t)

	env.registerVerified(t, "alice@example.com", "password1234")

	err := env.commands.RegisterUser.Execute(context.Background(), accounts.RegisterUserMessage{
		Name:     "Imposter",
		Email:    "alice@example.com",
		Password: "otherpassword",
	})
	assert.ErrorIs(t, err, accounts.ErrEmailExists)
}

func TestRegisterUnverifiedDuplicateReissuesCode(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.register(t, "alice@example.com", "password1234")
	firstCode := env.notifier.lastCode(t)

	// Same email again: no conflict, fresh code, still one live token.
	env.register(t, "alice@example.com", "password1234")
	secondCode := env.notifier.lastCode(t)

	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	count, err := env.db.NewSelect().
		Model((*accounts.VerificationToken)(nil)).
		Where("user_id = ?", user.ID.String()).
		Where("is_used = FALSE").
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, env.notifier.count())

	// The overwritten code no longer verifies (unless the draw collided).
	if firstCode != secondCode {
		err = env.commands.VerifyOTP.Execute(ctx, accounts.VerifyOTPMessage{
			Email: "alice@example.com",
			Code:  firstCode,
		})
		assert.ErrorIs(t, err, accounts.ErrOTPInvalid)
	}
}

func TestVerifyOTP(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		err := env.commands.VerifyOTP.Execute(ctx, accounts.VerifyOTPMessage{
			Email: "ghost@example.com",
			Code:  "123456",
		})
		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	})

	env.register(t, "alice@example.com", "password1234")

	t.Run("wrong code", func(t *testing.T) {
		code := "000000"
		if env.notifier.lastCode(t) == code {
			code = "000001"
		}
		err := env.commands.VerifyOTP.Execute(ctx, accounts.VerifyOTPMessage{
			Email: "alice@example.com",
			Code:  code,
		})
		assert.ErrorIs(t, err, accounts.ErrOTPInvalid)
	})

	t.Run("success activates the account", func(t *testing.T) {
		user := env.verify(t, "alice@example.com")
		assert.True(t, user.EmailVerified)
		assert.Equal(t, accounts.UserStatusActive, user.Status)
	})

	t.Run("already verified", func(t *testing.T) {
		err := env.commands.VerifyOTP.Execute(ctx, accounts.VerifyOTPMessage{
			Email: "alice@example.com",
			Code:  env.notifier.lastCode(t),
		})
		assert.ErrorIs(t, err, accounts.ErrEmailAlreadyVerified)
	})
}

func TestVerifyOTPExpired(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.register(t, "alice@example.com", "password1234")

	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	// Backdate the live token.
	_, err = env.repo.VerificationTokens().IssueTx(ctx, env.db, user.ID, "654321", accounts.TokenPurposeEmail, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	err = env.commands.VerifyOTP.Execute(ctx, accounts.VerifyOTPMessage{
		Email: "alice@example.com",
		Code:  "654321",
	})
	assert.ErrorIs(t, err, accounts.ErrOTPExpired)
}

func TestVerificationCodeSingleConsumer(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.register(t, "alice@example.com", "password1234")

	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	token, err := env.repo.VerificationTokens().GetLiveTx(ctx, env.db, user.ID, accounts.TokenPurposeEmail)
	require.NoError(t, err)

	// Two concurrent redemptions of the same code: the guarded update lets
	// exactly one through.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- env.repo.VerificationTokens().ConsumeTx(ctx, env.db, token.ID)
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, accounts.ErrOTPInvalid)
		losses++
	}

	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestIssueOTP(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("unknown user", func(t *testing.T) {
		err := env.commands.IssueOTP.Execute(ctx, accounts.IssueOTPMessage{Email: "ghost@example.com"})
		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	})

	env.register(t, "alice@example.com", "password1234")

	t.Run("resend for unverified user", func(t *testing.T) {
		err := env.commands.IssueOTP.Execute(ctx, accounts.IssueOTPMessage{Email: "alice@example.com"})
		require.NoError(t, err)

		// Latest code must verify.
		user := env.verify(t, "alice@example.com")
		assert.True(t, user.EmailVerified)
	})

	t.Run("already verified", func(t *testing.T) {
		err := env.commands.IssueOTP.Execute(ctx, accounts.IssueOTPMessage{Email: "alice@example.com"})
		assert.ErrorIs(t, err, accounts.ErrEmailAlreadyVerified)
	})
}

type failingNotifier struct{}

func (failingNotifier) Send(ctx context.Context, notification accounts.Notification) error {
	return errors.New("smtp relay down")
}

func TestIssueOTPDeliveryFailure(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.register(t, "alice@example.com", "password1234")

	commands := accounts.NewCommands(env.repo, failingNotifier{}, env.cfg)
	err := commands.IssueOTP.Execute(ctx, accounts.IssueOTPMessage{Email: "alice@example.com"})
	assert.ErrorIs(t, err, accounts.ErrNotificationFailed)

	// The code survives the failed delivery.
	user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	token, err := env.repo.VerificationTokens().GetLiveTx(ctx, env.db, user.ID, accounts.TokenPurposeEmail)
	require.NoError(t, err)
	assert.False(t, token.IsUsed)
}

func TestPasswordResetFlow(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.registerVerified(t, "alice@example.com", "password1234")

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		before := env.notifier.count()
		err := env.commands.InitializeReset.Execute(ctx, accounts.InitializePasswordResetMessage{
			Email: "ghost@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, before, env.notifier.count())
	})

	err := env.commands.InitializeReset.Execute(ctx, accounts.InitializePasswordResetMessage{
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	notification := env.notifier.last(t)
	assert.Equal(t, accounts.TemplatePasswordResetOTP, notification.Template)
	code := env.notifier.lastCode(t)

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := env.commands.FinalizeReset.Execute(ctx, accounts.FinalizePasswordResetMessage{
			Email:           "alice@example.com",
			Code:            code,
			Password:        "newpassword12",
			ConfirmPassword: "different",
		})
		assert.ErrorIs(t, err, accounts.ErrPasswordMismatch)
	})

	t.Run("wrong code", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		err := env.commands.FinalizeReset.Execute(ctx, accounts.FinalizePasswordResetMessage{
			Email:           "alice@example.com",
			Code:            wrong,
			Password:        "newpassword12",
			ConfirmPassword: "newpassword12",
		})
		assert.ErrorIs(t, err, accounts.ErrOTPInvalid)
	})

	t.Run("success swaps the credential", func(t *testing.T) {
		err := env.commands.FinalizeReset.Execute(ctx, accounts.FinalizePasswordResetMessage{
			Email:           "alice@example.com",
			Code:            code,
			Password:        "newpassword12",
			ConfirmPassword: "newpassword12",
		})
		require.NoError(t, err)

		assert.Equal(t, accounts.TemplatePasswordChanged, env.notifier.last(t).Template)

		_, _, err = env.auther.Login(ctx, "alice@example.com", "password1234")
		assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

		token, user, err := env.auther.Login(ctx, "alice@example.com", "newpassword12")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("code is single use", func(t *testing.T) {
		err := env.commands.FinalizeReset.Execute(ctx, accounts.FinalizePasswordResetMessage{
			Email:           "alice@example.com",
			Code:            code,
			Password:        "thirdpassword",
			ConfirmPassword: "thirdpassword",
		})
		assert.ErrorIs(t, err, accounts.ErrOTPInvalid)
	})
}

func TestChangePassword(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.registerVerified(t, "alice@example.com", "password1234")

	t.Run("wrong current password", func(t *testing.T) {
		err := env.commands.ChangePassword.Execute(ctx, accounts.ChangePasswordMessage{
			UserID:          user.ID,
			CurrentPassword: "nope",
			NewPassword:     "newpassword12",
			ConfirmPassword: "newpassword12",
		})
		assert.ErrorIs(t, err, accounts.ErrCurrentPasswordIncorrect)
	})

	t.Run("confirmation mismatch", func(t *testing.T) {
		err := env.commands.ChangePassword.Execute(ctx, accounts.ChangePasswordMessage{
			UserID:          user.ID,
			CurrentPassword: "password1234",
			NewPassword:     "newpassword12",
			ConfirmPassword: "different",
		})
		assert.ErrorIs(t, err, accounts.ErrPasswordMismatch)
	})

	t.Run("success", func(t *testing.T) {
		err := env.commands.ChangePassword.Execute(ctx, accounts.ChangePasswordMessage{
			UserID:          user.ID,
			CurrentPassword: "password1234",
			NewPassword:     "newpassword12",
			ConfirmPassword: "newpassword12",
		})
		require.NoError(t, err)

		_, _, err = env.auther.Login(ctx, "alice@example.com", "newpassword12")
		assert.NoError(t, err)

		notification := env.notifier.last(t)
		assert.Equal(t, accounts.TemplatePasswordChanged, notification.Template)
	})
}

func TestUpdateUser(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	alice := env.registerVerified(t, "alice@example.com", "password1234")
	bob := env.registerVerified(t, "bob@example.com", "password1234")

	strptr := func(s string) *string { return &s }

	t.Run("cross account update denied", func(t *testing.T) {
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  alice.ID,
			ActorID: bob.ID,
			Name:    strptr("Mallory"),
		})
		assert.ErrorIs(t, err, accounts.ErrUnauthorizedUpdate)
	})

	t.Run("admin may update anyone", func(t *testing.T) {
		var updated *accounts.User
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  alice.ID,
			ActorID: bob.ID,
			IsAdmin: true,
			Name:    strptr("Alice A."),
			OnUpdated: func(user *accounts.User) {
				updated = user
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice A.", updated.Name)
	})

	t.Run("email is immutable", func(t *testing.T) {
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  alice.ID,
			ActorID: alice.ID,
			Email:   strptr("new@example.com"),
		})
		assert.ErrorIs(t, err, accounts.ErrEmailImmutable)
	})

	t.Run("same email value is not a change", func(t *testing.T) {
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  alice.ID,
			ActorID: alice.ID,
			Email:   strptr("alice@example.com"),
		})
		assert.NoError(t, err)
	})

	t.Run("phone is normalized", func(t *testing.T) {
		var updated *accounts.User
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  alice.ID,
			ActorID: alice.ID,
			Phone:   strptr("+1 650 253 0000"),
			OnUpdated: func(user *accounts.User) {
				updated = user
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "+16502530000", updated.Phone)
	})

	t.Run("duplicate phone rejected", func(t *testing.T) {
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  bob.ID,
			ActorID: bob.ID,
			Phone:   strptr("+16502530000"),
		})
		assert.ErrorIs(t, err, accounts.ErrPhoneExists)
	})

	t.Run("invalid phone rejected", func(t *testing.T) {
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:  alice.ID,
			ActorID: alice.ID,
			Phone:   strptr("12345"),
		})
		assert.Error(t, err)
	})

	t.Run("aadhaar change resets verification", func(t *testing.T) {
		var updated *accounts.User
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:        alice.ID,
			ActorID:       alice.ID,
			AadhaarNumber: strptr("123412341234"),
			OnUpdated: func(user *accounts.User) {
				updated = user
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "123412341234", updated.AadhaarNumber)
		assert.False(t, updated.AadhaarVerified)

		err = env.commands.VerifyAadhaar.Execute(ctx, accounts.VerifyAadhaarMessage{UserID: alice.ID})
		require.NoError(t, err)

		err = env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:        alice.ID,
			ActorID:       alice.ID,
			AadhaarNumber: strptr("999912341234"),
			OnUpdated: func(user *accounts.User) {
				updated = user
			},
		})
		require.NoError(t, err)
		assert.False(t, updated.AadhaarVerified)
	})

	t.Run("duplicate aadhaar rejected", func(t *testing.T) {
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:        bob.ID,
			ActorID:       bob.ID,
			AadhaarNumber: strptr("999912341234"),
		})
		assert.ErrorIs(t, err, accounts.ErrAadhaarExists)
	})
}

func TestUpdateUserRequiresVerifiedEmail(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	env.register(t, "pending@example.com", "password1234")
	user, err := env.repo.Users().GetByEmail(ctx, "pending@example.com")
	require.NoError(t, err)

	name := "New Name"
	err = env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
		UserID:  user.ID,
		ActorID: user.ID,
		Name:    &name,
	})
	assert.ErrorIs(t, err, accounts.ErrUnverifiedAccountUpdate)

	err = env.commands.VerifyAadhaar.Execute(ctx, accounts.VerifyAadhaarMessage{UserID: user.ID})
	assert.ErrorIs(t, err, accounts.ErrUnverifiedAccountUpdate)
}

func TestVerifyAadhaar(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.registerVerified(t, "alice@example.com", "password1234")

	t.Run("no aadhaar on record", func(t *testing.T) {
		err := env.commands.VerifyAadhaar.Execute(ctx, accounts.VerifyAadhaarMessage{UserID: user.ID})
		assert.ErrorIs(t, err, accounts.ErrAadhaarNotProvided)
	})

	t.Run("marks verified", func(t *testing.T) {
		aadhaar := "123412341234"
		err := env.commands.UpdateUser.Execute(ctx, accounts.UpdateUserMessage{
			UserID:        user.ID,
			ActorID:       user.ID,
			AadhaarNumber: &aadhaar,
		})
		require.NoError(t, err)

		var verified *accounts.User
		err = env.commands.VerifyAadhaar.Execute(ctx, accounts.VerifyAadhaarMessage{
			UserID: user.ID,
			OnVerified: func(u *accounts.User) {
				verified = u
			},
		})
		require.NoError(t, err)
		assert.True(t, verified.AadhaarVerified)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := env.commands.VerifyAadhaar.Execute(ctx, accounts.VerifyAadhaarMessage{UserID: uuid.New()})
		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	})
}

func TestChangeAccountStatus(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	t.Run("cannot activate unverified account", func(t *testing.T) {
		env.register(t, "pending@example.com", "password1234")
		user, err := env.repo.Users().GetByEmail(ctx, "pending@example.com")
		require.NoError(t, err)

		err = env.commands.ChangeAccountStatus.Execute(ctx, accounts.ChangeAccountStatusMessage{
			UserID: user.ID,
			Status: accounts.UserStatusActive,
		})
		assert.ErrorIs(t, err, accounts.ErrCannotActivateUnverified)
	})

	t.Run("block and reinstate", func(t *testing.T) {
		user := env.registerVerified(t, "alice@example.com", "password1234")

		var changed *accounts.User
		err := env.commands.ChangeAccountStatus.Execute(ctx, accounts.ChangeAccountStatusMessage{
			UserID: user.ID,
			Status: accounts.UserStatusBlocked,
			OnChanged: func(u *accounts.User) {
				changed = u
			},
		})
		require.NoError(t, err)
		assert.Equal(t, accounts.UserStatusBlocked, changed.Status)

		_, _, err = env.auther.Login(ctx, "alice@example.com", "password1234")
		assert.ErrorIs(t, err, accounts.ErrAccountInactive)

		err = env.commands.ChangeAccountStatus.Execute(ctx, accounts.ChangeAccountStatusMessage{
			UserID: user.ID,
			Status: accounts.UserStatusActive,
			OnChanged: func(u *accounts.User) {
				changed = u
			},
		})
		require.NoError(t, err)
		assert.Equal(t, accounts.UserStatusActive, changed.Status)
	})

	t.Run("invalid status", func(t *testing.T) {
		user, err := env.repo.Users().GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)

		err = env.commands.ChangeAccountStatus.Execute(ctx, accounts.ChangeAccountStatusMessage{
			UserID: user.ID,
			Status: "archived",
		})
		assert.ErrorIs(t, err, accounts.ErrInvalidStatus)
	})

	t.Run("unknown user", func(t *testing.T) {
		err := env.commands.ChangeAccountStatus.Execute(ctx, accounts.ChangeAccountStatusMessage{
			UserID: uuid.New(),
			Status: accounts.UserStatusBlocked,
		})
		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	})
}

func TestDeleteUser(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	user := env.registerVerified(t, "alice@example.com", "password1234")

	err := env.commands.InitializeReset.Execute(ctx, accounts.InitializePasswordResetMessage{
		Email: "alice@example.com",
	})
	require.NoError(t, err)

	err = env.commands.DeleteUser.Execute(ctx, accounts.DeleteUserMessage{UserID: user.ID})
	require.NoError(t, err)

	_, err = env.repo.Users().GetByEmail(ctx, "alice@example.com")
	assert.Error(t, err)

	count, err := env.db.NewSelect().
		Model((*accounts.VerificationToken)(nil)).
		Where("user_id = ?", user.ID.String()).
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	t.Run("unknown user", func(t *testing.T) {
		err := env.commands.DeleteUser.Execute(ctx, accounts.DeleteUserMessage{UserID: user.ID})
		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
	})
}

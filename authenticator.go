package accounts

import (
	"context"

	"github.com/goliatone/go-repository-bun"
)

type Auther struct {
	repo            RepositoryManager
	signingKey      []byte
	tokenExpiration int
	issuer          string
	audience        []string
	logger          Logger
	tokenService    TokenService
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetTokenExpiration(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		repo:            repo,
		signingKey:      []byte(opts.GetSigningKey()),
		tokenExpiration: opts.GetTokenExpiration(),
		audience:        opts.GetAudience(),
		issuer:          opts.GetIssuer(),
		logger:          defLogger{},
		tokenService:    tokenService,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	s.tokenService = NewTokenService(
		s.signingKey,
		s.tokenExpiration,
		s.issuer,
		s.audience,
		logger,
	)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and account state, returning a signed
// session token and the authenticated user. Unknown emails and wrong
// passwords produce the same error.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.repo.Users().GetCredentials(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.logger.Warn("Login attempt for unknown email")
			return "", nil, ErrInvalidCredentials
		}
		s.logger.Error("Login lookup error: %v", err)
		return "", nil, err
	}

	if err := statusAuthError(user.Status); err != nil {
		s.logger.Warn("Login blocked due to user status: %s", user.Status)
		return "", nil, err
	}

	if !user.EmailVerified {
		s.logger.Warn("Login blocked, email not verified")
		return "", nil, ErrAccountNotVerified
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Warn("Login password mismatch")
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token generation error: %v", err)
		return "", nil, err
	}

	user.PasswordHash = ""

	return token, user, nil
}

// SessionFromToken validates the raw token and decodes it into a session.
func (s Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokenService.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed: %v", err)
		return nil, err
	}

	session, err := sessionFromAuthClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims: %v", err)
		return nil, err
	}

	return session, nil
}

// IdentityFromSession loads the current user record behind the session and
// re-checks the account status. A session minted before a block does not
// survive the block.
func (s *Auther) IdentityFromSession(ctx context.Context, session Session) (Identity, error) {
	id, err := session.GetUserUUID()
	if err != nil {
		return nil, ErrUnableToDecodeSession
	}

	user, err := s.repo.Users().GetByUserID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("IdentityFromSession lookup error: %v", err)
		return nil, err
	}

	if err := statusAuthError(user.Status); err != nil {
		return nil, err
	}

	return NewIdentityFromUser(user), nil
}

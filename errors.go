package accounts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Stable machine-readable codes surfaced in the response envelope.
const (
	TextCodeInvalidCredentials   = "INVALID_CREDENTIALS"
	TextCodeAccountInactive      = "ACCOUNT_INACTIVE"
	TextCodeAccountNotVerified   = "ACCOUNT_NOT_VERIFIED"
	TextCodeUserNotFound         = "USER_NOT_FOUND"
	TextCodeEmailExists          = "EMAIL_EXISTS"
	TextCodePhoneExists          = "PHONE_EXISTS"
	TextCodeAadhaarExists        = "AADHAAR_EXISTS"
	TextCodeEmailVerified        = "EMAIL_ALREADY_VERIFIED"
	TextCodeEmailImmutable       = "EMAIL_CANNOT_BE_UPDATED"
	TextCodeOTPInvalid           = "OTP_INVALID"
	TextCodeOTPExpired           = "OTP_EXPIRED"
	TextCodePasswordMismatch     = "PASSWORD_MISMATCH"
	TextCodeCurrentPassword      = "CURRENT_PASSWORD_INCORRECT"
	TextCodeAadhaarNotProvided   = "AADHAAR_NOT_PROVIDED"
	TextCodeCannotActivate       = "CANNOT_ACTIVATE_UNVERIFIED"
	TextCodeUnauthorizedUpdate   = "UNAUTHORIZED_UPDATE"
	TextCodeInvalidTransition    = "INVALID_STATUS_TRANSITION"
	TextCodeNotificationFailed   = "NOTIFICATION_FAILED"
	TextCodeTokenExpired         = "TOKEN_EXPIRED"
	TextCodeTokenMalformed       = "TOKEN_MALFORMED"
	TextCodeAPIKeyMissing        = "API_KEY_MISSING"
	TextCodeAPIKeyInvalid        = "API_KEY_INVALID"
	TextCodeInvalidStatus        = "INVALID_STATUS"
	TextCodeEmptyPassword        = "EMPTY_PASSWORD"
	TextCodeMismatchedCredential = "MISMATCHED_CREDENTIAL"
)

// ErrInvalidCredentials is returned for unknown emails and wrong passwords
// alike, so callers cannot tell which one failed.
var ErrInvalidCredentials = goerrors.New(MsgInvalidCredentials, goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountInactive is returned when an inactive or blocked account attempts
// to authenticate.
var ErrAccountInactive = goerrors.New(MsgAccountInactive, goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountInactive).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountNotVerified is returned when an operation requires a verified email.
var ErrAccountNotVerified = goerrors.New(MsgAccountNotVerified, goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountNotVerified).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserNotFound is the error we return for non found users
var ErrUserNotFound = goerrors.New(MsgUserNotFound, goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrEmailExists signals a registration against an already verified email.
var ErrEmailExists = goerrors.New(MsgEmailExists, goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(goerrors.CodeConflict)

// ErrPhoneExists signals a duplicate phone number.
var ErrPhoneExists = goerrors.New(MsgPhoneExists, goerrors.CategoryConflict).
	WithTextCode(TextCodePhoneExists).
	WithCode(goerrors.CodeConflict)

// ErrAadhaarExists signals a duplicate aadhaar number.
var ErrAadhaarExists = goerrors.New(MsgAadhaarExists, goerrors.CategoryConflict).
	WithTextCode(TextCodeAadhaarExists).
	WithCode(goerrors.CodeConflict)

// ErrEmailAlreadyVerified rejects a redundant email verification.
var ErrEmailAlreadyVerified = goerrors.New(MsgEmailAlreadyVerified, goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailVerified).
	WithCode(goerrors.CodeConflict)

// ErrEmailImmutable rejects email changes through the generic update path.
var ErrEmailImmutable = goerrors.New(MsgEmailImmutable, goerrors.CategoryBadInput).
	WithTextCode(TextCodeEmailImmutable).
	WithCode(goerrors.CodeBadRequest)

// ErrOTPInvalid covers wrong codes and already consumed tokens.
var ErrOTPInvalid = goerrors.New(MsgOTPInvalid, goerrors.CategoryAuth).
	WithTextCode(TextCodeOTPInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrOTPExpired covers matching but stale tokens.
var ErrOTPExpired = goerrors.New(MsgOTPExpired, goerrors.CategoryAuth).
	WithTextCode(TextCodeOTPExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrPasswordMismatch rejects a new password that differs from its confirmation.
var ErrPasswordMismatch = goerrors.New(MsgPasswordMismatch, goerrors.CategoryBadInput).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrCurrentPasswordIncorrect rejects a password change with a wrong current password.
var ErrCurrentPasswordIncorrect = goerrors.New(MsgCurrentPasswordIncorrect, goerrors.CategoryAuth).
	WithTextCode(TextCodeCurrentPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrAadhaarNotProvided rejects aadhaar verification when no number is on file.
var ErrAadhaarNotProvided = goerrors.New(MsgAadhaarNotProvided, goerrors.CategoryBadInput).
	WithTextCode(TextCodeAadhaarNotProvided).
	WithCode(goerrors.CodeBadRequest)

// ErrCannotActivateUnverified enforces active ⇒ email verified.
var ErrCannotActivateUnverified = goerrors.New(MsgCannotActivateUnverified, goerrors.CategoryBadInput).
	WithTextCode(TextCodeCannotActivate).
	WithCode(goerrors.CodeBadRequest)

// ErrUnverifiedAccountUpdate rejects profile changes while the account's
// email is still unverified. Same text code as ErrAccountNotVerified but
// filed as a bad request rather than an auth failure.
var ErrUnverifiedAccountUpdate = goerrors.New(MsgAccountNotVerified, goerrors.CategoryBadInput).
	WithTextCode(TextCodeAccountNotVerified).
	WithCode(goerrors.CodeBadRequest)

// ErrUnauthorizedUpdate rejects cross-account profile updates.
var ErrUnauthorizedUpdate = goerrors.New(MsgUnauthorizedUpdate, goerrors.CategoryAuth).
	WithTextCode(TextCodeUnauthorizedUpdate).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New(MsgInvalidTransition, goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidStatus rejects values outside the status enum.
var ErrInvalidStatus = goerrors.New(MsgInvalidStatus, goerrors.CategoryBadInput).
	WithTextCode(TextCodeInvalidStatus).
	WithCode(goerrors.CodeBadRequest)

// ErrNotificationFailed surfaces a post-commit delivery failure. The token the
// notification was carrying remains valid.
var ErrNotificationFailed = goerrors.New(MsgNotificationFailed, goerrors.CategoryOperation).
	WithTextCode(TextCodeNotificationFailed).
	WithCode(goerrors.CodeInternal)

// ErrTokenExpired is returned for expired session credentials.
var ErrTokenExpired = goerrors.New(MsgTokenExpired, goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for undecodable session credentials.
var ErrTokenMalformed = goerrors.New(MsgTokenMalformed, goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToFindSession is the error when a request has no credential at all
var ErrUnableToFindSession = goerrors.New("unable to find session", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode claims from a session credential
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword is the constant-time comparison failure.
var ErrMismatchedHashAndPassword = goerrors.New(MsgInvalidCredentials, goerrors.CategoryAuth).
	WithTextCode(TextCodeMismatchedCredential).
	WithCode(goerrors.CodeUnauthorized)

// statusAuthError maps an account status to the auth failure it implies, or
// nil when the status permits authentication.
func statusAuthError(status UserStatus) error {
	switch status {
	case UserStatusActive:
		return nil
	case UserStatusPending:
		return ErrAccountNotVerified
	default:
		return ErrAccountInactive
	}
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == TextCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

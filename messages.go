package accounts

// Human readable messages returned in the API envelope. Keep these stable,
// clients key off them in addition to the text codes.
const (
	MsgRegistered               = "User registered. Please check your email for the verification code."
	MsgOTPResent                = "Verification code sent. Please check your email."
	MsgEmailVerified            = "Email verified successfully."
	MsgLoggedIn                 = "Logged in successfully."
	MsgLoggedOut                = "Logged out successfully."
	MsgIfEmailRegistered        = "If the email is registered, a reset code has been sent."
	MsgPasswordReset            = "Password reset successfully."
	MsgPasswordChanged          = "Password changed successfully."
	MsgUserUpdated              = "User details updated successfully."
	MsgUserDeleted              = "User deleted successfully."
	MsgStatusChanged            = "Account status updated successfully."
	MsgAadhaarVerified          = "Aadhaar verified successfully."
	MsgUserFetched              = "User fetched successfully."
	MsgUsersFetched             = "Users fetched successfully."
	MsgSessionValid             = "Session is valid."
	MsgInvalidCredentials       = "Invalid credentials"
	MsgAccountInactive          = "Account is inactive or blocked"
	MsgAccountNotVerified       = "Account email is not verified"
	MsgUserNotFound             = "User not found"
	MsgEmailExists              = "Email already registered"
	MsgPhoneExists              = "Phone number already registered"
	MsgAadhaarExists            = "Aadhaar number already registered"
	MsgEmailAlreadyVerified     = "Email is already verified"
	MsgEmailImmutable           = "Email cannot be updated"
	MsgOTPInvalid               = "Invalid verification code"
	MsgOTPExpired               = "Verification code has expired"
	MsgPasswordMismatch         = "Passwords do not match"
	MsgCurrentPasswordIncorrect = "Current password is incorrect"
	MsgAadhaarNotProvided       = "No aadhaar number on record"
	MsgCannotActivateUnverified = "Cannot activate an account with an unverified email"
	MsgUnauthorizedUpdate       = "Not authorized to update this account"
	MsgInvalidTransition        = "Invalid account status transition"
	MsgInvalidStatus            = "Invalid account status"
	MsgNotificationFailed       = "Failed to deliver notification"
	MsgTokenExpired             = "Session has expired"
	MsgTokenMalformed           = "Invalid session token"
	MsgAPIKeyMissing            = "API key is missing"
	MsgAPIKeyInvalid            = "Invalid API key"
)

// Package accounts implements the user account and authentication backend:
// registration with email OTP verification, JWT session login, password
// reset and change, profile updates, aadhaar verification, and the account
// status lifecycle.
//
// User lifecycle:
//   - Users carry a UserStatus field persisted via Bun. Accounts start as
//     pending and become active when the email verification code is
//     redeemed. allowedTransitions holds the full transition graph and
//     activation always requires a verified email.
//
// Verification tokens:
//   - Every OTP lives in the verification_tokens table, scoped by purpose.
//     A user holds at most one live token per purpose, re-issuing a code
//     overwrites the previous one and redemption is single use even under
//     concurrent requests.
//
// Commands:
//   - Each write operation is a handler with an Execute(ctx, message)
//     entrypoint. Handlers run their work inside a single transaction via
//     the RepositoryManager and deliver notifications only after the
//     transaction commits.
package accounts

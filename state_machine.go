package accounts

// allowedTransitions maps each status to the statuses it may move to.
// Re-asserting the current status is always a no-op, never an error.
var allowedTransitions = map[UserStatus][]UserStatus{
	UserStatusPending:  {UserStatusActive, UserStatusInactive, UserStatusBlocked},
	UserStatusActive:   {UserStatusInactive, UserStatusBlocked},
	UserStatusInactive: {UserStatusActive, UserStatusBlocked},
	UserStatusBlocked:  {UserStatusActive, UserStatusInactive},
}

// CanTransition reports whether the lifecycle permits moving from one status
// to another.
func CanTransition(from, to UserStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition enforces the lifecycle rules for a status change on the
// given user. Activation requires a verified email.
func ValidateTransition(user *User, target UserStatus) error {
	if user == nil {
		return ErrUserNotFound
	}

	if !ValidStatus(string(target)) {
		return ErrInvalidStatus
	}

	current := user.Status
	if current == "" {
		current = UserStatusPending
	}

	if target == UserStatusActive && !user.EmailVerified {
		return ErrCannotActivateUnverified
	}

	if !CanTransition(current, target) {
		return ErrInvalidTransition
	}

	return nil
}

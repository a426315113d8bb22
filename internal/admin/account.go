package admin

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 64
	minPasswordLength = 8
	// bcrypt ignores everything past 72 bytes
	maxPasswordLength = 72
)

var (
	ErrAccountNotFound = errors.New("admin account not found")
	ErrUsernameTaken   = errors.New("username already exists")
	ErrLastAdmin       = errors.New("cannot delete the last admin account")
	ErrSelfDelete      = errors.New("cannot delete your own account")
	// the token names an account that was renamed or removed since it was issued
	ErrUnknownActor = errors.New("acting account no longer exists")
)

type Account struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func ValidateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return errors.New("username must be between 3 and 64 characters")
	}
	if strings.ContainsAny(username, " \t\r\n") {
		return errors.New("username must not contain whitespace")
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < minPasswordLength || len(password) > maxPasswordLength {
		return errors.New("password must be between 8 and 72 characters")
	}
	return nil
}

// checkDeletable applies the delete rules to a consistent snapshot of all accounts:
// the target must exist, at least one account must remain, the acting username must
// still name an account, and nobody deletes themselves.
func checkDeletable(accounts []Account, id int, actingUsername string) error {
	var target, actor *Account
	for i := range accounts {
		if accounts[i].ID == id {
			target = &accounts[i]
		}
		if accounts[i].Username == actingUsername {
			actor = &accounts[i]
		}
	}
	if target == nil {
		return ErrAccountNotFound
	}
	if len(accounts) <= 1 {
		return ErrLastAdmin
	}
	if actor == nil {
		return ErrUnknownActor
	}
	if actor.ID == target.ID {
		return ErrSelfDelete
	}
	return nil
}

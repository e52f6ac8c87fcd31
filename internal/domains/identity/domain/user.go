package domain

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyUsername    = errors.New("username is required")
	ErrEmptyPassword    = errors.New("password is required")
	ErrMalformedEntry   = errors.New("user directory entry must be username:password")
	ErrDuplicateAccount = errors.New("username listed more than once")
)

// User is an account known to the credential issuer.
type User struct {
	Username string
	password string
}

// NewUser builds a user ensuring required invariants.
func NewUser(username, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if password == "" {
		return nil, ErrEmptyPassword
	}
	return &User{Username: username, password: password}, nil
}

// CheckPassword compares in constant time. Passwords are case-sensitive.
func (u *User) CheckPassword(password string) bool {
	if u == nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(u.password), []byte(password)) == 1
}

// NormalizeUsername folds case; usernames match case-insensitively.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// ParseDirectory reads a static "user:password,user2:password2" list.
func ParseDirectory(raw string) ([]*User, error) {
	var users []*User
	seen := map[string]struct{}{}
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, password, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMalformedEntry, entry)
		}
		user, err := NewUser(name, password)
		if err != nil {
			return nil, err
		}
		key := NormalizeUsername(user.Username)
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateAccount, user.Username)
		}
		seen[key] = struct{}{}
		users = append(users, user)
	}
	return users, nil
}

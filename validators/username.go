package validators

import (
	"errors"
	"regexp"
)

var (
	ErrUsernameEmpty    = errors.New("no username provided")
	ErrUsernameTooShort = errors.New("username must be at least 3 characters long")
	ErrUsernameTooLong  = errors.New("username is too long")
	ErrUsernameInvalid  = errors.New("username may only contain letters, digits, dots, dashes and underscores")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if len(u) < 3 {
		return ErrUsernameTooShort
	}

	if len(u) > 150 {
		return ErrUsernameTooLong
	}

	if !usernamePattern.MatchString(u) {
		return ErrUsernameInvalid
	}

	return nil
}

package membership

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidUsername = errors.New("username must be at least 3 characters")
	ErrInvalidPassword = errors.New("password must be at least 8 characters")
	ErrInvalidEmail    = errors.New("invalid email address")
	ErrInvalidPhone    = errors.New("invalid phone number")
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 8
)

var (
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@(.+)$`)
	// Swedish numbers: optional +46, 46 or 0 prefix, then nine digits.
	phonePattern = regexp.MustCompile(`^(\+46|0|46)?[1-9]\d{8}$`)
)

func ValidateUsername(username string) error {
	if len(strings.TrimSpace(username)) < MinUsernameLength {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrInvalidPassword
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

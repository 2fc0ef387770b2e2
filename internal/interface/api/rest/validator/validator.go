package validator

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"file-share-api/internal/domain/file"
	"file-share-api/internal/interface/api/rest/dto/auth"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 32
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe
)

func ValidatePage(page string) (int, error) {
	p := 1
	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 1 {
			return 1, errors.New("invalid page")
		}
		return p, nil
	}

	return p, nil
}

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

// ValidateVisibility parses the optional ?visibility= query parameter.
func ValidateVisibility(s string) (file.VisibilityFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return file.VisibilityAny, nil
	case "public":
		return file.VisibilityPublic, nil
	case "private":
		return file.VisibilityPrivate, nil
	default:
		return file.VisibilityAny, errors.New("visibility must be public or private")
	}
}

func ValidateRegister(r auth.RegisterRequest) map[string]string {
	return validateCredentials(r.Username, r.Password)
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	return validateCredentials(r.Username, r.Password)
}

func validateCredentials(username, password string) map[string]string {
	errs := make(map[string]string)

	// Normalize
	username = strings.TrimSpace(username)

	// username (required + length + allowed chars)
	if username == "" {
		errs["username"] = "username is required"
	} else if l := utf8.RuneCountInString(username); l < minUsernameLen || l > maxUsernameLen {
		errs["username"] = "username length must be 3–32 characters"
	} else if !isUsername(username) {
		errs["username"] = "allowed characters: letters, digits, '-', '_', '.'"
	}

	// password (required + length)
	if strings.TrimSpace(password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8–72 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func isUsername(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.' {
			continue
		}
		return false
	}
	return true
}

package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func ValidateRegister(email, username, name, password string) ValidationErrors {
	errs := make(ValidationErrors)

	// Email
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	// Username
	username = strings.TrimSpace(username)
	if username == "" {
		errs.Add("username", "Username is required")
	} else if len(username) < 3 {
		errs.Add("username", "Username must be at least 3 characters")
	} else if len(username) > 50 {
		errs.Add("username", "Username is too long")
	} else if !usernameRegex.MatchString(username) {
		errs.Add("username", "Username can only contain letters, numbers, _ and -")
	}

	// Name
	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Name is required")
	} else if len(name) > 100 {
		errs.Add("name", "Name is too long")
	}

	// Password
	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateMessage checks message text: required after trimming, capped at 4k.
func ValidateMessage(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Message text is required")
	} else if len(text) > 4096 {
		errs.Add("text", "Message is too long")
	}

	return errs
}

func ValidatePost(text string) ValidationErrors {
	errs := make(ValidationErrors)

	text = strings.TrimSpace(text)
	if text == "" {
		errs.Add("text", "Post text is required")
	} else if len(text) > 1000 {
		errs.Add("text", "Post is too long")
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}

package validator

import (
	"net/mail"
	"strings"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func ValidateRegister(email, fullName, password, bio string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)
	validateFullName(fullName, errs)
	validateBio(bio, errs)

	if len(password) < 6 {
		errs.Add("password", "Password must be at least 6 characters")
	} else if len(password) > 128 {
		errs.Add("password", "Password is too long")
	}

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	validateEmail(email, errs)

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

// ValidateSend checks a message body before it reaches the store. Media
// fields are references to already uploaded objects, so only presence
// matters here.
func ValidateSend(text, imageURL, audioURL, videoURL *string) ValidationErrors {
	errs := make(ValidationErrors)

	hasText := text != nil && strings.TrimSpace(*text) != ""
	if !hasText && imageURL == nil && audioURL == nil && videoURL == nil {
		errs.Add("content", "Message needs text or a media reference")
	}

	return errs
}

func ValidateProfile(fullName, bio string) ValidationErrors {
	errs := make(ValidationErrors)

	validateFullName(fullName, errs)
	validateBio(bio, errs)

	return errs
}

func validateEmail(email string, errs ValidationErrors) {
	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}
}

func validateFullName(fullName string, errs ValidationErrors) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		errs.Add("full_name", "Full name is required")
	} else if len(fullName) < 2 {
		errs.Add("full_name", "Full name must be at least 2 characters")
	} else if len(fullName) > 50 {
		errs.Add("full_name", "Full name is too long")
	}
}

func validateBio(bio string, errs ValidationErrors) {
	if len(strings.TrimSpace(bio)) > 500 {
		errs.Add("bio", "Bio cannot exceed 500 characters")
	}
}

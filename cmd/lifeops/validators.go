package main

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLength = 8
	minNameLength     = 2
)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// validateEmail returns the form message for email, or "" when it is valid
func validateEmail(email string) string {
	if strings.TrimSpace(email) == "" {
		return "Please enter your email address"
	}
	if !validEmail(email) {
		return "Please enter a valid email address"
	}
	return ""
}

func validatePassword(password string) string {
	if strings.TrimSpace(password) == "" {
		return "Please enter a password"
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return "Password must be at least 8 characters"
	}
	return ""
}

func validateName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Please enter your name"
	}
	if utf8.RuneCountInString(name) < minNameLength {
		return "Name must be at least 2 characters"
	}
	return ""
}

// validateLogin checks the login form in field order
func validateLogin(email, password string) string {
	if msg := validateEmail(email); msg != "" {
		return msg
	}
	if password == "" {
		return "Please enter your password"
	}
	return ""
}

// validateSignup checks the signup form in field order
func validateSignup(name, email, password string) string {
	for _, msg := range []string{validateName(name), validateEmail(email), validatePassword(password)} {
		if msg != "" {
			return msg
		}
	}
	return ""
}

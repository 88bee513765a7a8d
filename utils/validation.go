package utils

import (
	"regexp"
	"strings"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugPattern     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars    = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidateUsername checks if the username meets the requirements
func ValidateUsername(username string) (bool, string) {
	if !usernamePattern.MatchString(username) {
		return false, "Username must be 3-30 characters and contain only letters, numbers and underscores"
	}
	return true, ""
}

// ValidateEmail checks if the email is valid
func ValidateEmail(email string) (bool, string) {
	if !emailPattern.MatchString(email) {
		return false, "Please provide a valid email address"
	}
	return true, ""
}

// ValidatePassword checks if the password meets the requirements
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return false, "Password must contain at least one uppercase letter, one lowercase letter and one number"
	}
	return true, ""
}

// ValidateSlug checks a package slug: lowercase, hyphen-separated
func ValidateSlug(slug string) (bool, string) {
	if !slugPattern.MatchString(slug) {
		return false, "Slug must be lowercase letters, numbers and hyphens"
	}
	return true, ""
}

// Slugify derives a slug from a display name
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// ValidatePercent checks a discount percentage is within [0,100]
func ValidatePercent(percent int) (bool, string) {
	if percent < 0 || percent > 100 {
		return false, "Discount percent must be between 0 and 100"
	}
	return true, ""
}

// ValidatePrice checks a price is non-negative
func ValidatePrice(price float64) (bool, string) {
	if price < 0 {
		return false, "Price cannot be negative"
	}
	return true, ""
}

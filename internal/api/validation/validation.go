package validation

import (
	"regexp"
	"unicode"
)

var (
	// emailRegex validates email format
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// subdomainRegex validates tenant subdomain slugs
	subdomainRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

	// phoneRegex accepts international numbers with common separators
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-().]{5,24}$`)

	// uuidRegex validates UUID format
	uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// IsValidEmail checks if the string is a valid email format
func IsValidEmail(email string) bool {
	if len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidSubdomain checks a tenant subdomain slug: 3-50 chars, lowercase
// letters, digits and hyphens only.
func IsValidSubdomain(subdomain string) (bool, string) {
	if subdomain == "" {
		return false, "Subdomain is required"
	}
	if len(subdomain) < 3 || len(subdomain) > 50 {
		return false, "Subdomain must be between 3 and 50 characters"
	}
	if !subdomainRegex.MatchString(subdomain) {
		return false, "Subdomain can only contain lowercase letters, numbers, and hyphens"
	}
	return true, ""
}

// IsValidPhone checks a contact phone number.
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// IsValidUUID checks if the string is a valid UUID format
func IsValidUUID(id string) bool {
	return uuidRegex.MatchString(id)
}

// IsValidPassword checks password strength: 8-100 characters with at least
// one uppercase letter, one lowercase letter, one digit and one special
// character.
func IsValidPassword(password string) (bool, string) {
	if password == "" {
		return false, "Password is required"
	}
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if len(password) > 100 {
		return false, "Password must be at most 100 characters"
	}

	var (
		hasUpper   bool
		hasLower   bool
		hasNumber  bool
		hasSpecial bool
	)

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return false, "Password must contain at least one uppercase letter"
	}
	if !hasLower {
		return false, "Password must contain at least one lowercase letter"
	}
	if !hasNumber {
		return false, "Password must contain at least one number"
	}
	if !hasSpecial {
		return false, "Password must contain at least one special character"
	}

	return true, ""
}

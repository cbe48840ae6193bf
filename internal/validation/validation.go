package validation

import (
	"net"
	"regexp"
	"strings"
	"unicode/utf8"

	"portfolio/internal/apperr"
)

// EmailPattern accepts anything shaped like local@domain.tld.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Maximum field lengths in runes.
const (
	MaxNameLength    = 200
	MaxEmailLength   = 254
	MaxSubjectLength = 200
	MaxMessageLength = 5000
)

// UnknownAddress is returned when no client address can be determined.
const UnknownAddress = "unknown"

// Contact holds the raw contact form fields.
type Contact struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Normalize trims every field and lower-cases the email.
func (c Contact) Normalize() Contact {
	return Contact{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.ToLower(strings.TrimSpace(c.Email)),
		Subject: strings.TrimSpace(c.Subject),
		Message: strings.TrimSpace(c.Message),
	}
}

// ValidateContact checks a normalized submission. Required fields are
// checked in the order name, email, message; the first failure is returned.
func ValidateContact(c Contact) *apperr.InputError {
	required := []struct {
		field string
		value string
	}{
		{"name", c.Name},
		{"email", c.Email},
		{"message", c.Message},
	}
	for _, r := range required {
		if r.value == "" {
			return apperr.Invalid(r.field, "Missing required field: "+r.field+".")
		}
	}

	if !ValidateEmail(c.Email) {
		return apperr.Invalid("email", "Invalid email address format.")
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"name", c.Name, MaxNameLength},
		{"email", c.Email, MaxEmailLength},
		{"subject", c.Subject, MaxSubjectLength},
		{"message", c.Message, MaxMessageLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return apperr.Invalid(l.field, "Field "+l.field+" is too long.")
		}
	}
	return nil
}

// ValidateEmail reports whether email matches EmailPattern.
func ValidateEmail(email string) bool {
	return EmailPattern.MatchString(email)
}

// ClientAddress picks the requester address from proxy headers, falling back
// to the socket peer address.
func ClientAddress(forwardedFor, realIP, peer string) string {
	if first, _, _ := strings.Cut(forwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if ip := strings.TrimSpace(realIP); ip != "" {
		return ip
	}
	if peer = strings.TrimSpace(peer); peer != "" {
		if host, _, err := net.SplitHostPort(peer); err == nil {
			return host
		}
		return peer
	}
	return UnknownAddress
}

package security

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxSearchQueryLength is the longest accepted search query, in characters.
	MaxSearchQueryLength = 100

	// LikeEscape is the escape character used by SanitizeSearchString.
	LikeEscape = `\`
)

var (
	// ErrQueryTooLong is returned for queries over MaxSearchQueryLength characters.
	ErrQueryTooLong = errors.New("search query too long")
	// ErrQueryInvalid is returned for queries with disallowed characters or SQL fragments.
	ErrQueryInvalid = errors.New("search query contains invalid characters")
)

// suspiciousPatterns match SQL and script fragments. Keywords must stand alone so
// that names such as "Selena" or "Dropkin" still pass.
var suspiciousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(union|select|insert|update|delete|drop|alter|exec|execute|truncate)\b`),
	regexp.MustCompile(`(?i)\b(or|and)\s+\d+\s*=\s*\d+`),
	regexp.MustCompile(`(?i)\b(or|and)\s+['"].*['"]\s*=\s*['"].*['"]`),
	regexp.MustCompile(`--|/\*|\*/`),
	regexp.MustCompile(`(?i)\b(waitfor|benchmark|pg_sleep|sleep)\s*\(`),
	regexp.MustCompile(`(?i)(<script|</script|javascript:|vbscript:|onload=|onerror=)`),
}

// ValidateSearchQuery trims query and rejects it when it is too long, contains characters
// outside the allowed set, or looks like an injection attempt.
func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	if utf8.RuneCountInString(query) > MaxSearchQueryLength {
		return "", ErrQueryTooLong
	}

	for _, char := range query {
		if !isValidSearchChar(char) {
			return "", ErrQueryInvalid
		}
	}

	for _, pattern := range suspiciousPatterns {
		if pattern.MatchString(query) {
			return "", ErrQueryInvalid
		}
	}

	return query, nil
}

// isValidSearchChar allows letters, digits, spaces and the punctuation found in
// names, emails and phone numbers.
func isValidSearchChar(char rune) bool {
	if unicode.IsLetter(char) || unicode.IsNumber(char) {
		return true
	}
	return strings.ContainsRune(" -_.@+'(),", char)
}

// SanitizeSearchString escapes LIKE wildcards so query matches literally.
// Use it with an ESCAPE clause naming LikeEscape.
func SanitizeSearchString(query string) string {
	if query == "" {
		return ""
	}

	query = strings.ReplaceAll(query, LikeEscape, LikeEscape+LikeEscape)
	query = strings.ReplaceAll(query, "%", LikeEscape+"%")
	query = strings.ReplaceAll(query, "_", LikeEscape+"_")

	return query
}

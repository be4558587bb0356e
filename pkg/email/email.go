// Package email derives presentable fallbacks from an email address for
// registrations that arrive without a name.
package email

import (
	"strings"
	"unicode"
)

// DeriveDisplayName builds a display name from the local part of an email
// address, splitting on common separators and capitalizing each piece.
// "asha.devi@example.com" becomes "Asha Devi". An unusable local part
// yields "User".
func DeriveDisplayName(email string) string {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(parts) == 0 {
		return "User"
	}

	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

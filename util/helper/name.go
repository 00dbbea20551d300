package helper_util

import (
	"strings"
	"unicode"
)

// NameFromEmail derives a display name from the local part of an email,
// title-casing each segment split on '.', '-' and '_'.
func NameFromEmail(email string) string {
	local := email
	if at := strings.Index(email, "@"); at >= 0 {
		local = email[:at]
	}
	segments := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '-' || r == '_'
	})
	for i, seg := range segments {
		runes := []rune(strings.ToLower(seg))
		runes[0] = unicode.ToUpper(runes[0])
		segments[i] = string(runes)
	}
	if len(segments) == 0 {
		return email
	}
	return strings.Join(segments, " ")
}

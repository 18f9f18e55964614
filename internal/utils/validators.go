package utils

import "unicode"

// IsValidParticipantID checks a researcher-assigned participant label:
// 1-128 chars of letters, digits, dash or underscore. Survey-platform IDs
// and lab codes all fit this shape.
func IsValidParticipantID(id string) bool {
	if len(id) == 0 || len(id) > 128 {
		return false
	}
	for _, char := range id {
		switch {
		case unicode.IsLetter(char):
		case unicode.IsDigit(char):
		case char == '-' || char == '_':
		default:
			return false
		}
	}
	return true
}

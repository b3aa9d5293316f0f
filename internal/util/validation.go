package util

import (
	"regexp"
)

var (
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

func IsValidUUID(s string) bool {
	if s == "" {
		return false
	}
	return uuidRegex.MatchString(s)
}

func IsValidSlug(s string) bool {
	if s == "" || len(s) > 64 {
		return false
	}
	return slugRegex.MatchString(s)
}

const maxDisplayNameLen = 50

func IsValidDisplayName(s string) bool {
	return len(s) <= maxDisplayNameLen
}

package convert

import (
	"strconv"
	"strings"
)

// BoolPtr takes in boolen condition and returns pointer version of it
func BoolPtr(condition bool) *bool {
	b := condition
	return &b
}

// Uint64FromString parses a decimal id such as a snowflake, tolerating
// surrounding whitespace
func Uint64FromString(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(s), 10, 64)
}

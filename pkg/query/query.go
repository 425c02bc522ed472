package query

import (
	"strconv"
	"strings"
)

// Int64Slice parses a slice of string values from URL query parameters
// into a slice of int64 identifiers. Invalid entries are ignored safely.
func Int64Slice(vals []string) []int64 {
	var res []int64
	for _, v := range vals {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			res = append(res, i)
		}
	}
	return res
}

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

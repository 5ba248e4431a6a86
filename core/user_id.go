package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// UserID is the canonical user identifier. User ids arrive as numeric or
// textual values depending on the calling layer; they are normalized once at
// the system boundary via ParseUserID and compared as this single type
// everywhere else.
type UserID string

// ParseUserID normalizes a raw user identifier. Accepted inputs are strings,
// integers and whole floating point numbers (JSON decoding yields float64
// for numeric ids). Anything else, including empty or fractional values,
// fails with ErrInvalidUserID.
func ParseUserID(v any) (UserID, error) {
	switch id := v.(type) {
	case UserID:
		if id == "" {
			return "", ErrInvalidUserID
		}
		return id, nil
	case string:
		trimmed := strings.TrimSpace(id)
		if trimmed == "" {
			return "", ErrInvalidUserID
		}
		return UserID(trimmed), nil
	case int:
		return UserID(strconv.Itoa(id)), nil
	case int32:
		return UserID(strconv.FormatInt(int64(id), 10)), nil
	case int64:
		return UserID(strconv.FormatInt(id, 10)), nil
	case float64:
		if id != math.Trunc(id) {
			return "", fmt.Errorf("%w: fractional value %v", ErrInvalidUserID, id)
		}
		return UserID(strconv.FormatInt(int64(id), 10)), nil
	case fmt.Stringer:
		return ParseUserID(id.String())
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidUserID, v)
	}
}

// String returns the canonical textual form.
func (u UserID) String() string { return string(u) }

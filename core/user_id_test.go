package core

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUserID(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    UserID
		wantErr bool
	}{
		{"string", "alice", UserID("alice"), false},
		{"string trimmed", "  alice \n", UserID("alice"), false},
		{"empty string", "", "", true},
		{"whitespace only", "   ", "", true},
		{"user id passthrough", UserID("bob"), UserID("bob"), false},
		{"empty user id", UserID(""), "", true},
		{"int", 42, UserID("42"), false},
		{"int64", int64(1 << 40), UserID("1099511627776"), false},
		{"int32", int32(-7), UserID("-7"), false},
		{"whole float", float64(123), UserID("123"), false},
		{"fractional float", 12.5, "", true},
		{"stringer", &url.URL{Host: "u9"}, UserID("//u9"), false},
		{"unsupported type", struct{}{}, "", true},
		{"nil", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseUserID(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidUserID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserIDString(t *testing.T) {
	assert.Equal(t, "alice", UserID("alice").String())
}

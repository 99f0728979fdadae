package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Plain text unchanged", "12 Elm St, Apt 4", "12 Elm St, Apt 4"},
		{"Ampersand kept literal", "Tom & Jerry Clinic", "Tom & Jerry Clinic"},
		{"Tags stripped", "<b>12 Elm</b> St", "12 Elm St"},
		{"Script removed with body", "<script>alert('x')</script>Needs O+", "Needs O+"},
		{"Whitespace trimmed", "  surgery  ", "surgery"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeText(tt.in))
		})
	}
}

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateKey(t *testing.T) {
	cases := []struct {
		key  string
		want error
	}{
		{"", ErrMissingKey},
		{"bad_key", ErrInvalidKeyFormat},
		{"Oneness_abc", ErrInvalidKeyFormat},
		{" oneness_abc", ErrInvalidKeyFormat},
		{"oneness", ErrInvalidKeyFormat},
		{"oneness_", nil},
		{"oneness_abc", nil},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			assert.ErrorIs(t, ValidateKey(tc.key), tc.want)
			assert.Equal(t, tc.want == nil, IsValidKey(tc.key))
		})
	}
}

func TestMask(t *testing.T) {
	assert.Equal(t, "", Mask(""))
	assert.Equal(t, "oneness_•••", Mask("oneness_abc"))
	assert.Equal(t, "oneness_••••••••", Mask("oneness_0123456789abcdef"))
	assert.Equal(t, "•••••••", Mask("bad_key"))
}

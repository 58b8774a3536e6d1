package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStateIsEmpty(t *testing.T) {
	st := New()
	assert.Empty(t, st.APIKey())
	assert.Equal(t, 0, st.Transcript().Len())
}

func TestSetKey(t *testing.T) {
	st := New()

	assert.Equal(t, KeyInvalid, st.SetKey("bad_key"))
	assert.Empty(t, st.APIKey(), "invalid key must not be stored")

	assert.Equal(t, KeyValid, st.SetKey("oneness_abc"))
	assert.Equal(t, "oneness_abc", st.APIKey())

	assert.Equal(t, KeyInvalid, st.SetKey("oneness"))
	assert.Equal(t, "oneness_abc", st.APIKey(), "invalid input must keep the accepted key")

	assert.Equal(t, KeyEmpty, st.SetKey(""))
	assert.Equal(t, "oneness_abc", st.APIKey())

	assert.Equal(t, KeyValid, st.SetKey("oneness_xyz"))
	assert.Equal(t, "oneness_xyz", st.APIKey())
}

func TestKeyStatusString(t *testing.T) {
	assert.Equal(t, "empty", KeyEmpty.String())
	assert.Equal(t, "valid", KeyValid.String())
	assert.Equal(t, "invalid", KeyInvalid.String())
}

package oauthstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "state-cookie-secret"

func TestGenerateAndParse(t *testing.T) {
	state := NewState()

	cookieValue, err := Generate(testSecret, state)
	require.NoError(t, err)

	parsed, err := Parse(testSecret, cookieValue)
	require.NoError(t, err)
	assert.Equal(t, state, parsed)
}

func TestParse_WrongSecret(t *testing.T) {
	cookieValue, err := Generate(testSecret, NewState())
	require.NoError(t, err)

	_, err = Parse("different-secret", cookieValue)
	assert.Error(t, err)
}

func TestParse_TamperedValue(t *testing.T) {
	cookieValue, err := Generate(testSecret, NewState())
	require.NoError(t, err)

	_, err = Parse(testSecret, cookieValue+"x")
	assert.Error(t, err)
}

func TestNewState_Unique(t *testing.T) {
	assert.NotEqual(t, NewState(), NewState())
}

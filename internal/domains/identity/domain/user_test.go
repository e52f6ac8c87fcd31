package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirectory(t *testing.T) {
	users, err := ParseDirectory(" alice:secret , bob:pa:ss ,")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.True(t, users[0].CheckPassword("secret"))
	assert.False(t, users[0].CheckPassword("Secret"))
	assert.True(t, users[1].CheckPassword("pa:ss"))
}

func TestParseDirectory_Errors(t *testing.T) {
	_, err := ParseDirectory("alice")
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = ParseDirectory("alice:")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = ParseDirectory(":pw")
	assert.ErrorIs(t, err, ErrEmptyUsername)

	_, err = ParseDirectory("alice:a,ALICE:b")
	assert.ErrorIs(t, err, ErrDuplicateAccount)
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("  Alice "))
}

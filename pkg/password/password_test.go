package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("correct-horse-battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse-battery", hash)

	assert.True(t, Verify("correct-horse-battery", hash))
	assert.False(t, Verify("wrong-password", hash))
}

func TestHash_EmptyPassword(t *testing.T) {
	_, err := Hash("")
	assert.Error(t, err)
}

func TestVerify_InvalidHash(t *testing.T) {
	assert.False(t, Verify("anything", "not-a-bcrypt-hash"))
}

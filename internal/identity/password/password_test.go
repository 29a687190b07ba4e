package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("s3cret-pass")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$")

	assert.True(t, Verify("s3cret-pass", encoded))
	assert.False(t, Verify("wrong-pass", encoded))
}

func TestHashIsSalted(t *testing.T) {
	a, err := Hash("same-password")
	require.NoError(t, err)
	b, err := Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	assert.True(t, Verify("same-password", a))
	assert.True(t, Verify("same-password", b))
}

func TestVerifyRejectsMalformed(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("anything", "plaintext"))
	assert.False(t, Verify("anything", "$argon2i$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"))
	assert.False(t, Verify("anything", "$argon2id$v=19$m=bad,t=1,p=4$c2FsdA$aGFzaA"))
	assert.False(t, Verify("anything", "$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA"))
}

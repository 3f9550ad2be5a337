package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealRoundTrip(t *testing.T) {
	sealer, err := NewSealer("unit-test-key")
	require.NoError(t, err)

	blob, err := sealer.Seal("patXXXX.secret")
	require.NoError(t, err)
	assert.NotContains(t, blob, "patXXXX", "plaintext must not survive sealing")

	opened, err := sealer.Open(blob)
	require.NoError(t, err)
	assert.Equal(t, "patXXXX.secret", opened)
}

func TestSealProducesFreshNonces(t *testing.T) {
	sealer, err := NewSealer("unit-test-key")
	require.NoError(t, err)

	a, err := sealer.Seal("same")
	require.NoError(t, err)
	b, err := sealer.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealer, err := NewSealer("key-one")
	require.NoError(t, err)
	other, err := NewSealer("key-two")
	require.NoError(t, err)

	blob, err := sealer.Seal("secret")
	require.NoError(t, err)

	_, err = other.Open(blob)
	assert.Error(t, err)
}

func TestOpenRejectsGarbage(t *testing.T) {
	sealer, err := NewSealer("key")
	require.NoError(t, err)

	_, err = sealer.Open("@@not-base64@@")
	assert.Error(t, err)

	_, err = sealer.Open("c2hvcnQ")
	assert.Error(t, err)
}

func TestEmptyKeyRejected(t *testing.T) {
	_, err := NewSealer("")
	assert.Error(t, err)
}

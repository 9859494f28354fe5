package trust

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	return pub
}

func TestRegistry_AddLookup(t *testing.T) {
	reg := NewRegistry()
	pub := genKey(t)

	require.NoError(t, reg.Add("kernel-primary", pub))

	key, status := reg.Lookup("kernel-primary")
	assert.Equal(t, KeyActive, status)
	assert.Equal(t, pub, key)
}

func TestRegistry_UnknownPrincipal(t *testing.T) {
	reg := NewRegistry()

	key, status := reg.Lookup("nobody")
	assert.Equal(t, KeyUnknown, status)
	assert.Nil(t, key)
}

func TestRegistry_Revoke(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("kernel-primary", genKey(t)))

	reg.Revoke("kernel-primary")

	key, status := reg.Lookup("kernel-primary")
	assert.Equal(t, KeyRevoked, status, "revoked principal must stay distinguishable from unknown")
	assert.Nil(t, key)
}

func TestRegistry_ReAddReinstates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("kernel-primary", genKey(t)))
	reg.Revoke("kernel-primary")

	rotated := genKey(t)
	require.NoError(t, reg.Add("kernel-primary", rotated))

	key, status := reg.Lookup("kernel-primary")
	assert.Equal(t, KeyActive, status)
	assert.Equal(t, rotated, key)
}

func TestRegistry_RejectsBadKeySize(t *testing.T) {
	reg := NewRegistry()
	err := reg.Add("kernel-primary", ed25519.PublicKey([]byte{1, 2, 3}))
	require.Error(t, err)
}

func TestRegistry_AddHex(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.AddHex("p", "not-hex"))
	require.Error(t, reg.AddHex("p", "abcd"), "short key must be rejected")
}

func TestRegistry_Principals(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Add("a", genKey(t)))
	require.NoError(t, reg.Add("b", genKey(t)))
	reg.Revoke("b")

	assert.ElementsMatch(t, []string{"a", "b"}, reg.Principals())
}

func TestKeyStatus_String(t *testing.T) {
	assert.Equal(t, "active", KeyActive.String())
	assert.Equal(t, "revoked", KeyRevoked.String())
	assert.Equal(t, "unknown", KeyUnknown.String())
}

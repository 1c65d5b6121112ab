package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOpaque(t *testing.T) {
	a, err := GenerateOpaque(32)
	require.NoError(t, err)
	b, err := GenerateOpaque(32)
	require.NoError(t, err)

	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
	// 32 bytes -> 43 chars of unpadded base64url.
	require.Len(t, a, 43)
}

func TestDeviceKeyStable(t *testing.T) {
	k1 := DeviceKey("Mozilla/5.0 (X11; Linux x86_64)")
	k2 := DeviceKey("Mozilla/5.0 (X11; Linux x86_64)")
	k3 := DeviceKey("curl/8.5.0")

	require.Equal(t, k1, k2)
	require.NotEqual(t, k1, k3)
	require.Len(t, k1, deviceKeyLen)
}

func TestDeviceKeyEmptyUserAgent(t *testing.T) {
	require.Equal(t, DeviceKey(""), DeviceKey("   "))
	require.NotEmpty(t, DeviceKey(""))
}

package agentdriver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidKey(t *testing.T) {
	require.True(t, ValidKey("INSTANCE_ID"))
	require.True(t, ValidKey("_private"))
	require.False(t, ValidKey(""))
	require.False(t, ValidKey("1LEADING"))
	require.False(t, ValidKey("HAS-DASH"))
}

func TestValidValue(t *testing.T) {
	require.True(t, ValidValue("coding"))
	require.False(t, ValidValue("bad`whoami`"))
	require.False(t, ValidValue("bad; rm -rf /"))
	require.False(t, ValidValue("bad$(id)"))
}

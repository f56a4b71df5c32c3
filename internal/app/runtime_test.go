package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/relocore/relocore/testing"
)

func TestInTestModeSetByHarness(t *testing.T) {
	RefreshTestMode()
	require.True(t, InTestMode())
}

func TestRefreshTestModeTracksEnv(t *testing.T) {
	t.Setenv("RELOCORE_TEST_MODE", "0")
	RefreshTestMode()
	require.False(t, InTestMode())

	t.Setenv("RELOCORE_TEST_MODE", "1")
	RefreshTestMode()
	require.True(t, InTestMode())
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("APP_ADDR")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, "AED", cfg.DefaultCurrency)
	require.False(t, cfg.IsProduction())
}

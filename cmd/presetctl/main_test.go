package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/layout-presets/internal/testutil"
	"github.com/tendant/layout-presets/pkg/layoutpreset"
)

// run executes presetctl against a fresh in-memory tree seeded from the
// shared fixture and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SEED_FILE", "")

	seedPath := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(seedPath, testutil.SiteYAML, 0o644))

	base := []string{
		"--seed", seedPath,
		"--site", "website=/content",
		"--location", testutil.PresetsFolder.String(),
	}

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(base, args...))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestAllowedCommand(t *testing.T) {
	out, err := run(t, "allowed", "main", "-d", testutil.DefaultDevice, "-i", testutil.HomePage.String())
	require.NoError(t, err)

	var result layoutpreset.AllowedFragments
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Items, 1)
	assert.Equal(t, testutil.HeroMain, result.Items[0].ID)
}

func TestAllowedCommand_RequiresDevice(t *testing.T) {
	_, err := run(t, "allowed", "main")
	assert.Error(t, err)
}

func TestInsertCommand(t *testing.T) {
	out, err := run(t, "insert", testutil.HomePage.String(), testutil.HeroMain.String(), "main", "-d", testutil.DefaultDevice, "--show")
	require.NoError(t, err)

	dec := json.NewDecoder(strings.NewReader(out))
	var result layoutpreset.InsertResult
	require.NoError(t, dec.Decode(&result))
	assert.Equal(t, 3, result.Copied)

	var device layoutpreset.DeviceVariant
	require.NoError(t, dec.Decode(&device))
	assert.Len(t, device.Renderings, 4)
}

func TestInsertCommand_InvalidID(t *testing.T) {
	_, err := run(t, "insert", "nope", testutil.HeroMain.String(), "main", "-d", testutil.DefaultDevice)
	assert.Error(t, err)
}

func TestBoundSlotCommand(t *testing.T) {
	out, err := run(t, "bound-slot", testutil.Sidebar.String(), "-d", testutil.DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, "aside\n", out)

	out, err = run(t, "bound-slot", testutil.Draft.String(), "-d", testutil.DefaultDevice)
	require.NoError(t, err)
	assert.Equal(t, "unbound\n", out)
}

func TestPresetsAndShowCommands(t *testing.T) {
	out, err := run(t, "presets", testutil.PresetsFolder.String())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], testutil.HeroMain.String()))

	out, err = run(t, "show", testutil.HomePage.String())
	require.NoError(t, err)
	var node layoutpreset.ContentNode
	require.NoError(t, json.Unmarshal([]byte(out), &node))
	assert.Equal(t, "/content/home", node.Path)

	_, err = run(t, "show", testutil.HomePage.String(), "-d", "{46D2F427-4CE5-4E1F-BA10-EF3636F43534}")
	assert.ErrorIs(t, err, layoutpreset.ErrDeviceNotFound)
}

func TestCanonicalizeCommand(t *testing.T) {
	out, err := run(t, "canonicalize", "main/col_d1000000-0000-4000-8000-000000000002", "header")
	require.NoError(t, err)
	assert.Equal(t, "main/col\nheader\n", out)
}

func TestLoadConfig_Flags(t *testing.T) {
	t.Setenv("DATABASE_URL", "memory")
	t.Setenv("CONFIG_FILE", "")

	cfg, err := loadConfig(&globalFlags{
		sites:     []string{"corporate=/content/corporate"},
		locations: []string{"corporate:" + testutil.PresetsFolder.String(), testutil.PresetsFolder.String()},
		verbose:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Len(t, cfg.Sites, 1)
	require.Len(t, cfg.Locations, 2)
	assert.Equal(t, "corporate", cfg.Locations[0].Site)
	assert.Equal(t, "", cfg.Locations[1].Site)

	_, err = loadConfig(&globalFlags{sites: []string{"no-root"}})
	assert.Error(t, err)
}

func TestLocationsCommand(t *testing.T) {
	campaign := "a0000000-0000-4000-8000-000000000099"
	out, err := run(t, "locations", "--location", "Campaign:"+campaign)
	require.NoError(t, err)

	shared := testutil.PresetsFolder.String()
	assert.Equal(t, strings.Join([]string{
		"campaign\t" + campaign,
		"campaign\t" + shared,
		"shared\t" + shared,
	}, "\n")+"\n", out)
}

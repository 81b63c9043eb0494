package cmd

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/mj1618/visual-runner/internal/config"
	"github.com/mj1618/visual-runner/internal/output"
	"github.com/mj1618/visual-runner/internal/platform"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const runTestINI = `[DEFAULT]
url = https://app.test/login
username = alice
password = s3cret
excel_file_input = accounts.csv

[Settings]
launch_delay_ms = 0
click_settle_ms = 0
keystroke_interval_ms = 0
`

const runTestScript = `[
  {"field_name": "Username", "action": "setText", "objectId": "user.png"},
  {"field_name": "", "action": "Click", "objectId": "missing.png"}
]`

// setFlag sets a flag for the duration of the test.
func setFlag(t *testing.T, c *cobra.Command, persistent bool, name, value string) {
	t.Helper()
	flags := c.Flags()
	if persistent {
		flags = c.PersistentFlags()
	}
	f := flags.Lookup(name)
	require.NotNil(t, f, name)
	old := f.Value.String()
	require.NoError(t, flags.Set(name, value))
	t.Cleanup(func() {
		_ = f.Value.Set(old)
		f.Changed = false
	})
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// newRunFixture lays out a base directory with configuration, a script, one
// data record and the user field's reference image, and installs a fake
// desktop backend whose screen shows that field at (40,30).
func newRunFixture(t *testing.T) (string, *fakeInputter, *fakeLauncher, *bytes.Buffer) {
	t.Helper()
	base := t.TempDir()
	writeFile(t, filepath.Join(base, config.DefaultConfigFile), runTestINI)
	writeFile(t, filepath.Join(base, config.DefaultScriptFile), runTestScript)
	writeFile(t, filepath.Join(base, "Data", "accounts.csv"), "Name,Email\nAlice,alice@example.com\n")

	scr, field := screenWithButton(40, 30)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "Objects"), 0o755))
	writeObject(t, filepath.Join(base, "Objects"), "user.png", field)

	in := &fakeInputter{}
	launch := &fakeLauncher{}
	prevProvider := platform.NewProviderFunc
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Inputter:      in,
			Screenshotter: &fakeScreenshotter{screens: []image.Image{scr}},
			Launcher:      launch,
		}, nil
	}
	t.Cleanup(func() { platform.NewProviderFunc = prevProvider })

	var out bytes.Buffer
	prevStdout := output.Stdout
	output.Stdout = &out
	t.Cleanup(func() { output.Stdout = prevStdout })

	setFlag(t, rootCmd, true, "base-dir", base)
	runCmd.SetContext(context.Background())
	return base, in, launch, &out
}

func TestRunCommand_CompletesWithSkippedSteps(t *testing.T) {
	_, in, launch, out := newRunFixture(t)

	require.NoError(t, runRun(runCmd, nil))

	assert.Equal(t, []string{"https://app.test/login"}, launch.opened)
	assert.Equal(t, []image.Point{{X: 52, Y: 36}}, in.clicks)
	assert.Equal(t, []string{"alice"}, in.typed)
	assert.Contains(t, out.String(), "outcome: performed")
	assert.Contains(t, out.String(), "outcome: skipped")
	assert.Contains(t, out.String(), "missing.png")
}

func TestRunCommand_MissingDataFileStopsBeforeLaunch(t *testing.T) {
	base, in, launch, out := newRunFixture(t)
	setFlag(t, runCmd, false, "data", filepath.Join(base, "Data", "nope.csv"))

	err := runRun(runCmd, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.csv")
	assert.Empty(t, launch.opened)
	assert.Empty(t, in.clicks)
	assert.Empty(t, out.String())
}

func TestRunCommand_MissingURLStopsBeforeLaunch(t *testing.T) {
	base, _, launch, _ := newRunFixture(t)
	writeFile(t, filepath.Join(base, config.DefaultConfigFile), "[DEFAULT]\nexcel_file_input = accounts.csv\n")

	err := runRun(runCmd, nil)

	require.ErrorIs(t, err, config.ErrMissingKey)
	assert.Empty(t, launch.opened)
}

func TestRunCommand_BadScriptStopsBeforeLaunch(t *testing.T) {
	base, _, launch, _ := newRunFixture(t)
	writeFile(t, filepath.Join(base, config.DefaultScriptFile), `[{"field_name": "", "action": "Clik", "objectId": "x.png"}]`)

	require.Error(t, runRun(runCmd, nil))
	assert.Empty(t, launch.opened)
}

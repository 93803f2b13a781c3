package root

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCmdRoot_Subcommands(t *testing.T) {
	cmd := NewCmdRoot()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"render", "blocks", "dispatch", "import", "init", "config", "completion"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "output", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRender_EndToEnd(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("IVMD_EXECUTABLE_CLASS", "")
	t.Setenv("IVMD_STYLE", "")

	dir := t.TempDir()
	in := filepath.Join(dir, "lab.md")
	require.NoError(t, os.WriteFile(in, []byte("```\nls -la\n```{{execute}}\n"), 0644))

	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"render", in, "--no-highlight"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "<pre class=\"executable\"><code>ls -la\n</code></pre>\n", out.String())
}

func TestRender_ConfigFlag(t *testing.T) {
	t.Setenv("IVMD_EXECUTABLE_CLASS", "")

	dir := t.TempDir()
	configPath := filepath.Join(dir, "ivmd.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("executable_class: run\n"), 0600))

	cmd := NewCmdRoot()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(bytes.NewBufferString("```\npwd\n```{{execute}}\n"))
	cmd.SetArgs([]string{"--config", configPath, "render", "--no-highlight"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "<pre class=\"run\"><code>pwd\n</code></pre>\n", out.String())
}

func TestBlocks_OutputFormatFromConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "ivmd.yml")
	require.NoError(t, os.WriteFile(configPath, []byte("output_format: json\n"), 0600))
	doc := "```\nls\n```{{execute}}\n"

	t.Run("config format applies when --output is unset", func(t *testing.T) {
		cmd := NewCmdRoot()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(bytes.NewBufferString(doc))
		cmd.SetArgs([]string{"--config", configPath, "blocks"})

		require.NoError(t, cmd.Execute())
		assert.JSONEq(t, `[{"index": 0, "code": "ls\n", "line": 1}]`, out.String())
	})

	t.Run("explicit --output wins", func(t *testing.T) {
		cmd := NewCmdRoot()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetIn(bytes.NewBufferString(doc))
		cmd.SetArgs([]string{"--config", configPath, "blocks", "-o", "plain"})

		require.NoError(t, cmd.Execute())
		assert.Equal(t, "0\t\t1\tls\n", out.String())
	})
}

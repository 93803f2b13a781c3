package importcmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/intervirt-md/pkg/md"
)

const page = `<h1>Lab</h1>
<pre class="executable"><code>virtctl start vm1
</code></pre>
<pre><code class="go">x := 1
</code></pre>
`

func newTestOptions(input string) (*importOptions, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return &importOptions{
		executableClass: md.DefaultExecutableClass,
		noColor:         true,
		stdin:           strings.NewReader(input),
		stdout:          &stdout,
		stderr:          &stderr,
	}, &stdout, &stderr
}

func TestRunImport_Stdin(t *testing.T) {
	opts, stdout, _ := newTestOptions(page)

	require.NoError(t, runImport("", opts))

	out := stdout.String()
	assert.Contains(t, out, "# Lab")
	assert.Contains(t, out, "```\nvirtctl start vm1\n```{{execute}}")
	assert.Contains(t, out, "```go")

	blocks, err := md.ExecutableBlocks([]byte(out))
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "virtctl start vm1\n", blocks[0].Code)
}

func TestRunImport_FileToFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "lab.html")
	require.NoError(t, os.WriteFile(in, []byte(`<pre class="run"><code>ls</code></pre>`), 0644))

	opts, stdout, stderr := newTestOptions("")
	opts.executableClass = "run"
	opts.out = filepath.Join(dir, "lab.md")

	require.NoError(t, runImport(in, opts))

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Imported "+opts.out)

	data, err := os.ReadFile(opts.out)
	require.NoError(t, err)
	assert.Equal(t, "```\nls\n```{{execute}}\n", string(data))
}

func TestRunImport_MissingFile(t *testing.T) {
	opts, _, _ := newTestOptions("")

	err := runImport(filepath.Join(t.TempDir(), "missing.html"), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read input")
}

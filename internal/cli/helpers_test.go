package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and
// the exit code. opts may be nil.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, string, int) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{}
	}
	t.Cleanup(func() { opts.Close() })

	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	// An empty config directory keeps a stray tscale.yaml out of the tests.
	cmd.SetArgs(append([]string{"--config-path", t.TempDir()}, args...))

	code := run(cmd, &errOut)
	return out.String(), errOut.String(), code
}

// decodeResponse decodes a JSON response whose data has type T.
func decodeResponse[T any](t *testing.T, out string) (T, *CLIError) {
	t.Helper()
	var resp struct {
		Status string    `json:"status"`
		Data   T         `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	return resp.Data, resp.Error
}

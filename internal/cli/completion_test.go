package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetRootCmd creates a fresh root command for testing.
func resetRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sentinel",
		Short: "Terminal client for the Server Sentinel fleet health-check backend",
	}
}

func TestCompletionGeneration(t *testing.T) {
	tests := []struct {
		name   string
		gen    func(*cobra.Command, *bytes.Buffer) error
		expect []string
	}{
		{
			name: "bash",
			gen:  func(c *cobra.Command, b *bytes.Buffer) error { return c.GenBashCompletion(b) },
			expect: []string{
				"# bash completion for sentinel",
				"__sentinel_debug",
				"complete -o default -F __start_sentinel sentinel",
			},
		},
		{
			name:   "zsh",
			gen:    func(c *cobra.Command, b *bytes.Buffer) error { return c.GenZshCompletion(b) },
			expect: []string{"#compdef sentinel", "_sentinel()"},
		},
		{
			name:   "fish",
			gen:    func(c *cobra.Command, b *bytes.Buffer) error { return c.GenFishCompletion(b, true) },
			expect: []string{"fish completion for sentinel", "complete -c sentinel"},
		},
		{
			name:   "powershell",
			gen:    func(c *cobra.Command, b *bytes.Buffer) error { return c.GenPowerShellCompletion(b) },
			expect: []string{"Register-ArgumentCompleter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tt.gen(resetRootCmd(), &buf))
			for _, want := range tt.expect {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestCompletionIncludesBuiltinCommands(t *testing.T) {
	var buf bytes.Buffer
	err := rootCmd.GenBashCompletion(&buf)

	require.NoError(t, err)
	output := buf.String()

	assert.Contains(t, output, "__completeNoDesc", "should use dynamic completion")
	assert.Contains(t, output, "__start_sentinel", "should have start function")
	assert.Contains(t, output, "_sentinel_root_command", "should have root command function")

	// Commands with local flags get their own functions
	assert.Contains(t, output, "_sentinel_run()")
	assert.Contains(t, output, "_sentinel_status()")
	assert.Contains(t, output, "_sentinel_servers()")
	assert.Contains(t, output, "_sentinel_completion()")
}

func TestCompletionBashSyntaxValid(t *testing.T) {
	cmd := resetRootCmd()
	cmd.AddCommand(&cobra.Command{Use: "run", Short: "Run a health check"})
	cmd.AddCommand(&cobra.Command{Use: "status", Short: "Show the latest report"})

	var buf bytes.Buffer
	err := cmd.GenBashCompletion(&buf)

	require.NoError(t, err)
	output := buf.String()

	openBraces := strings.Count(output, "{")
	closeBraces := strings.Count(output, "}")
	assert.Equal(t, openBraces, closeBraces, "braces should be balanced")
	assert.Contains(t, output, "__start_sentinel()")
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.Contains(t, completionCmd.ValidArgs, "bash")
	assert.Contains(t, completionCmd.ValidArgs, "zsh")
	assert.Contains(t, completionCmd.ValidArgs, "fish")
	assert.Contains(t, completionCmd.ValidArgs, "powershell")
	assert.Len(t, completionCmd.ValidArgs, 4)
}

func TestCompletionCommandWritesScript(t *testing.T) {
	var buf bytes.Buffer
	completionCmd.SetOut(&buf)
	defer completionCmd.SetOut(nil)

	require.NoError(t, completionCmd.RunE(completionCmd, []string{"zsh"}))
	assert.Contains(t, buf.String(), "#compdef sentinel")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"dashboard", "run", "status", "servers", "version", "completion"} {
		assert.True(t, names[want], "missing %s command", want)
	}

	for _, flag := range []string{"config", "url", "no-color", "debug"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing --%s", flag)
	}
}

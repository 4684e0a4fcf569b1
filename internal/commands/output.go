package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chameleoncloud/trovi/internal/ui"
)

// outputHelper wraps a cobra.Command to provide convenient output methods
type outputHelper struct {
	cmd *cobra.Command
}

// newOutputHelper creates an output helper for the given command
func newOutputHelper(cmd *cobra.Command) *outputHelper {
	return &outputHelper{cmd: cmd}
}

// println writes a line to the command's output
func (o *outputHelper) println(args ...any) {
	fmt.Fprintln(o.cmd.OutOrStdout(), args...)
}

// printf writes formatted output to the command's output
func (o *outputHelper) printf(format string, args ...any) {
	fmt.Fprintf(o.cmd.OutOrStdout(), format, args...)
}

// printErr writes a line to the command's error output
func (o *outputHelper) printErr(args ...any) {
	fmt.Fprintln(o.cmd.ErrOrStderr(), args...)
}

// printJSON writes v as indented JSON
func (o *outputHelper) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	o.println(string(data))
	return nil
}

// styled returns a themed writer bound to the command's streams
func (o *outputHelper) styled() *ui.Output {
	return ui.NewOutput(o.cmd.OutOrStdout(), o.cmd.ErrOrStderr())
}

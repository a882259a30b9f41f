// Package cli exposes the job board client as cobra commands, both for one-shot
// invocations and for the interactive shell.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/garnizeh/jobboard/internal/app"
)

// RootCmd builds the command tree over a. Output goes to out. A fresh tree is
// built per shell line so flag values never leak between lines.
func RootCmd(a *app.App, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "jobboard",
		Short:         "jobboard browses jobs and tracks your applications.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.AddCommand(
		registerCmd(a),
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		jobsCmd(a),
		jobCmd(a),
		postCmd(a),
		applyCmd(a),
		checkCmd(a),
		appsCmd(a),
		statusCmd(a),
		statsCmd(a),
		shellCmd(a),
	)

	return cmd
}

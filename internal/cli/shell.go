package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/garnizeh/jobboard/internal/app"
)

func shellCmd(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Shell(cmd.Context(), a, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// Shell reads one command per line from in until EOF, "quit" or "exit". A
// failing command prints its error and the shell carries on.
func Shell(ctx context.Context, a *app.App, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		args, err := splitArgs(sc.Text())
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n> ", err)
			continue
		}
		if len(args) == 0 {
			fmt.Fprint(out, "> ")
			continue
		}
		switch args[0] {
		case "quit", "exit":
			return nil
		case "shell":
			fmt.Fprint(out, "Already in the shell.\n> ")
			continue
		}

		root := RootCmd(a, out)
		root.SetArgs(args)
		if err := root.ExecuteContext(ctx); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

var errUnterminatedQuote = errors.New("unterminated quote")

// splitArgs splits a line on whitespace, keeping single- or double-quoted
// runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		quote   rune
		inToken bool
	)
	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				args = append(args, cur.String())
				cur.Reset()
				inToken = false
			}
		default:
			cur.WriteRune(r)
			inToken = true
		}
	}
	if quote != 0 {
		return nil, errUnterminatedQuote
	}
	if inToken {
		args = append(args, cur.String())
	}
	return args, nil
}

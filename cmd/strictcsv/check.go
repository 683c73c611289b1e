package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oleg578/strictcsv"
)

var errCheckFailed = errors.New("one or more files are not valid CSV")

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Validate CSV files",
	Long:  "Parse each file strictly and report the first error with its line and column.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	encName := viper.GetString("encoding")
	failed := false
	for _, name := range args {
		if err := checkFile(cmd.OutOrStdout(), cmd.InOrStdin(), name, encName); err != nil {
			if !strictcsv.IsParseError(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), err)
			}
			failed = true
		}
	}
	if failed {
		return errCheckFailed
	}
	return nil
}

// checkFile prints one status line for name. Parse failures are printed and
// returned; I/O failures are only returned, already prefixed with name.
func checkFile(out io.Writer, stdin io.Reader, name, encName string) error {
	text, err := readInput(stdin, name, encName)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	table, err := strictcsv.Parse(text)
	if err != nil {
		var perr *strictcsv.ParseError
		if errors.As(err, &perr) {
			fmt.Fprintf(out, "%s:%d:%d: %v\n", name, perr.Line, perr.Column, perr.Err)
		}
		return err
	}

	fmt.Fprintf(out, "%s: ok (%d rows x %d fields)\n", name, len(table), table.Width())
	return nil
}

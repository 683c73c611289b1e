package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oleg578/strictcsv"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [file]",
	Short: "Rewrite a CSV file in canonical form",
	Long: "Parse a CSV file (or stdin) and write it back with minimal quoting and CRLF between records. " +
		"Canonical input is reproduced byte for byte.",
	Args: cobra.MaximumNArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	name := inputName(args)

	text, err := readInput(cmd.InOrStdin(), name, viper.GetString("encoding"))
	if err != nil {
		return err
	}
	table, err := strictcsv.Parse(text)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(cmd.ErrOrStderr(), "[fmt] %s: %d rows x %d fields\n", name, len(table), table.Width())
	}

	dst, finish, err := openOutput(cmd.OutOrStdout(), output)
	if err != nil {
		return err
	}
	return finish(writeCanonical(dst, table))
}

func writeCanonical(dst io.Writer, table strictcsv.Table) error {
	w := strictcsv.NewWriter(dst)
	if err := w.WriteAll(table); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oleg578/strictcsv"
	"github.com/oleg578/strictcsv/export"
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a CSV file to JSON, YAML or Parquet",
	Long:  "Parse a CSV file (or stdin) and export it. Every column is written as a string.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringP("to", "t", "json", "Target format: json, yaml, parquet")
	convertCmd.Flags().Bool("header", false, "Use the first record as column names")
	convertCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")

	_ = viper.BindPFlag("header", convertCmd.Flags().Lookup("header"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("to")
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

	opts := export.Options{Header: viper.GetBool("header")}
	if viper.GetBool("verbose") {
		fmt.Fprintf(cmd.ErrOrStderr(), "[convert] %s: %d rows x %d fields -> %s (header=%t)\n",
			name, len(table), table.Width(), format, opts.Header)
	}

	dst, finish, err := openOutput(cmd.OutOrStdout(), output)
	if err != nil {
		return err
	}
	return finish(convertTable(dst, table, format, opts))
}

func convertTable(dst io.Writer, table strictcsv.Table, format string, opts export.Options) error {
	switch strings.ToLower(format) {
	case "json":
		return export.WriteJSON(dst, table, opts)
	case "yaml", "yml":
		return export.WriteYAML(dst, table, opts)
	case "parquet":
		return export.WriteParquet(dst, table, opts)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "strictcsv",
	Short: "Strict RFC 4180 CSV checker and converter",
	Long: "strictcsv validates CSV files, rewrites them in canonical form (minimal quoting, CRLF line breaks) " +
		"and converts them to JSON, YAML or Parquet.",
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("encoding", encodingAuto,
		"Input encoding: auto, utf-8, utf-16le, utf-16be, latin1, windows-1252")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("encoding", rootCmd.PersistentFlags().Lookup("encoding"))
}

func initConfig() {
	viper.SetEnvPrefix("STRICTCSV")
	viper.AutomaticEnv()
}

package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "docroot",
	Short:   "Static file server with caching and byte-range support",
	Long: `Docroot serves a filesystem subtree over HTTP with correct
conditional GET, single byte-range, HEAD, and directory-listing semantics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		readConfig(cmd)
		setupLogging()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "document root directory (default: ./public, env: DOCROOT_ROOT_PATH)")

	_ = viper.BindPFlag("root.path", rootCmd.PersistentFlags().Lookup("root"))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

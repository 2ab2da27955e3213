package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Centum Academy portal API",
	Long:  `Session-backed portal in front of the Centum authentication API: login, role dashboards and permission checks.`,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(secretCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

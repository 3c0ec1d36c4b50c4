package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	envFile  string
	engine   string
	logLevel string
	jsonOut  bool
	listenTo string
)

var rootCmd = &cobra.Command{
	Use:   "boycott-detector",
	Short: "Check whether an Amazon product's manufacturer is under an ethical boycott",
	Long: `boycott-detector renders an Amazon product page, extracts its title, manufacturer
and country of origin, and compares the manufacturer against the Ethical Consumer
boycott list and your personal boycott list.

Run without a subcommand to start the interactive shell.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runShell,
}

var checkCmd = &cobra.Command{
	Use:   "check <product-url>",
	Short: "Check a single product and print the verdict",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Fetch and print the current canonical boycott list",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var personalCmd = &cobra.Command{
	Use:   "personal",
	Short: "Show or edit the personal boycott list",
}

var personalListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the personal boycott list",
	Args:  cobra.NoArgs,
	RunE:  runPersonalList,
}

var personalAddCmd = &cobra.Command{
	Use:   "add <company name>",
	Short: "Add a company to the personal boycott list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPersonalAdd,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the detector over a local HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "", "Browser engine: playwright or rod (overrides BROWSER_ENGINE)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")

	checkCmd.Flags().BoolVar(&jsonOut, "json", false, "Print the result as JSON")
	serveCmd.Flags().StringVar(&listenTo, "addr", "", "Listen address (default SERVER_HOST:SERVER_PORT)")

	personalCmd.AddCommand(personalListCmd)
	personalCmd.AddCommand(personalAddCmd)

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(personalCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// cli carries the persistent flags shared by every command.
type cli struct {
	baseURL        string
	timeout        time.Duration
	idempotencyKey string
	output         string
}

func (c *cli) client() *apiClient {
	return &apiClient{
		baseURL:        c.baseURL,
		httpClient:     &http.Client{Timeout: c.timeout},
		idempotencyKey: c.idempotencyKey,
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:           "bookkeeper-cli",
		Short:         "Bookkeeper CLI tool",
		Long:          `A command line interface for interacting with the bookkeeper ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", envOr("BOOKKEEPER_URL", "http://localhost:8080"), "Base URL of the bookkeeper API")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&c.idempotencyKey, "idempotency-key", "", "Idempotency key sent with mutating requests")
	rootCmd.PersistentFlags().StringVarP(&c.output, "output", "o", outputTable, "Output format: table or json")

	rootCmd.AddCommand(
		accountsCmd(c),
		entriesCmd(c),
		balanceCmd(c),
		balancesCmd(c),
		periodsCmd(c),
		reportsCmd(c),
		ledgerCmd(c),
		importCmd(c),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

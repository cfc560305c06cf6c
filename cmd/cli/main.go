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

var (
	baseURL string
	token   string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bankd-cli",
		Short: "bankd CLI tool",
		Long:  `A command line interface for operating the bankd ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the bankd API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated deployments")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Replay every account's journal and verify balances",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	ledgerCmd.AddCommand(consistencyCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Scheduler commands
	schedulerCmd := &cobra.Command{
		Use:   "scheduler",
		Short: "Scheduler operations",
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "Execute all due scheduled transfers, debits and installments",
		Run: func(cmd *cobra.Command, args []string) {
			runSweep()
		},
	}

	schedulerCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(schedulerCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func doRequest(method, path string) ([]byte, int) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func checkConsistency() {
	body, status := doRequest(http.MethodGet, "/api/v1/ledger/consistency")

	if status != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		AccountsChecked int      `json:"accounts_checked"`
		Inconsistent    []string `json:"inconsistent"`
		Consistent      bool     `json:"consistent"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Accounts checked: %d\n", result.AccountsChecked)
	if !result.Consistent {
		fmt.Printf("Consistency check FAILED\nInconsistent accounts: %v\n", result.Inconsistent)
		os.Exit(1)
	}
	fmt.Printf("Consistency check PASSED\n")
}

func runSweep() {
	body, status := doRequest(http.MethodPost, "/api/v1/scheduler/sweep")

	if status != http.StatusOK {
		fmt.Printf("Sweep FAILED (Status: %d)\nResponse: %s\n", status, string(body))
		os.Exit(1)
	}

	var result struct {
		Executed int `json:"executed"`
		Failed   int `json:"failed"`
		Skipped  int `json:"skipped"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Sweep completed: executed=%d failed=%d skipped=%d\n", result.Executed, result.Failed, result.Skipped)
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/klarbok/klarbok/internal/infrastructure/postgres"
)

var (
	baseURL string
	company string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "klarbok-cli",
		Short: "Klarbok CLI tool",
		Long:  `A command line interface for interacting with the Klarbok bookkeeping API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Klarbok API")
	rootCmd.PersistentFlags().StringVar(&company, "company", "", "Company ID sent as X-Company-ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistencyCmd := &cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	}

	var trialBalanceYear int
	trialBalanceCmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "Print the trial balance for a fiscal year",
		Run: func(cmd *cobra.Command, args []string) {
			printTrialBalance(trialBalanceYear)
		},
	}
	trialBalanceCmd.Flags().IntVar(&trialBalanceYear, "year", time.Now().Year()-1, "Fiscal year")

	ledgerCmd.AddCommand(consistencyCmd)
	ledgerCmd.AddCommand(trialBalanceCmd)
	rootCmd.AddCommand(ledgerCmd)

	// Export commands
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "File exports",
	}

	var exportYear int
	var orgNumber, companyName, outFile string

	sieCmd := &cobra.Command{
		Use:   "sie",
		Short: "Download an SIE type 4 file",
		Run: func(cmd *cobra.Command, args []string) {
			downloadExport("/api/v1/exports/sie", exportYear, orgNumber, companyName, outFile)
		},
	}
	sruCmd := &cobra.Command{
		Use:   "sru",
		Short: "Download income declaration SRU records",
		Run: func(cmd *cobra.Command, args []string) {
			downloadExport("/api/v1/exports/sru", exportYear, orgNumber, companyName, outFile)
		},
	}
	for _, c := range []*cobra.Command{sieCmd, sruCmd} {
		c.Flags().IntVar(&exportYear, "year", time.Now().Year()-1, "Fiscal year")
		c.Flags().StringVar(&orgNumber, "orgnr", "", "Organisation number")
		c.Flags().StringVar(&companyName, "name", "", "Company name")
		c.Flags().StringVar(&outFile, "out", "", "Output file (default: stdout)")
	}

	exportCmd.AddCommand(sieCmd)
	exportCmd.AddCommand(sruCmd)
	rootCmd.AddCommand(exportCmd)

	// Migration commands
	var databaseURL, migrationsPath string
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}
	migrateUpCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrations(databaseURL, migrationsPath); err != nil {
				fmt.Printf("Migration failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migrations applied")
		},
	}
	migrateDownCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			if err := postgres.RunMigrationsDown(databaseURL, migrationsPath); err != nil {
				fmt.Printf("Rollback failed: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("Migration rolled back")
		},
	}
	migrateCmd.PersistentFlags().StringVar(&databaseURL, "database-url",
		os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", "migrations", "Migrations directory")
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func apiGet(path string) (*http.Response, error) {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if company != "" {
		req.Header.Set("X-Company-ID", company)
	}
	return client.Do(req)
}

func checkConsistency() {
	resp, err := apiGet("/api/v1/ledger/consistency")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
	if consistent, ok := result["consistent"].(bool); ok {
		fmt.Printf("Consistent: %v\n", consistent)
	}
	fmt.Printf("Total debit:  %v\n", result["total_debit"])
	fmt.Printf("Total credit: %v\n", result["total_credit"])
}

func printTrialBalance(year int) {
	resp, err := apiGet("/api/v1/ledger/trial-balance?year=" + strconv.Itoa(year))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-8s %14s %14s %14s %14s\n", "Account", "Opening", "Debit", "Credit", "Closing")
	for _, row := range rows {
		fmt.Printf("%-8v %14v %14v %14v %14v\n",
			row["account_code"], row["opening"], row["debit"], row["credit"], row["closing"])
	}
}

func downloadExport(path string, year int, orgNumber, companyName, outFile string) {
	query := url.Values{}
	query.Set("year", strconv.Itoa(year))
	query.Set("org_number", orgNumber)
	query.Set("company_name", companyName)
	resp, err := apiGet(path + "?" + query.Encode())
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Export failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	if outFile == "" {
		os.Stdout.Write(body)
		return
	}
	if err := os.WriteFile(outFile, body, 0o644); err != nil {
		fmt.Printf("Failed to write %s: %v\n", outFile, err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(body), outFile)
}

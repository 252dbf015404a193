// Package main implements the tripctl CLI for manual operations against the tripd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the tripd HTTP server
	serverURL string
	// authToken is sent as a bearer token when set
	authToken string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tripctl",
	Short: "CLI for tripd HTTP server operations",
	Long: `tripctl is a command-line interface for interacting with the tripd HTTP server.
It provides commands for extracting POIs from itineraries, inspecting engine
stats, tuning the confidence threshold, and searching enriched trips.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8090", "tripd server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "bearer token for authenticated servers")
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(thresholdCmd)
	rootCmd.AddCommand(searchCmd)
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check tripd server health",
	Long: `Check the health status of the tripd HTTP server.

Examples:
  # Check health
  tripctl health

  # Check health on a different server
  tripctl health --server http://localhost:8080`,
	RunE: runHealth,
}

// extractCmd extracts POIs from an itinerary file or stdin
var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract POIs from an itinerary JSON file or stdin",
	Long: `Extract points of interest from an itinerary using the tripd server.

The input is the JSON request body for POST /api/v1/extract:
  {"activities": [{"title": "..."}], "trip": {"city": "...", "country": "..."}}

Examples:
  # Extract from a file
  tripctl extract itinerary.json

  # Extract from stdin
  cat itinerary.json | tripctl extract -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

// statsCmd shows the extraction engine stats
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show extraction engine stats",
	RunE:  runStats,
}

// thresholdCmd updates the confidence threshold
var thresholdCmd = &cobra.Command{
	Use:   "threshold VALUE",
	Short: "Set the extraction confidence threshold",
	Long: `Set the minimum confidence a candidate POI must reach to be reported.
The value must be between 0 and 1.

Examples:
  tripctl threshold 0.7`,
	Args: cobra.ExactArgs(1),
	RunE: runThreshold,
}

// searchCmd searches enriched trips
var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search enriched trips",
	Long: `Run a semantic search over enriched trips.

Examples:
  tripctl search "temples in Hue"
  tripctl search --limit 10 "street food"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "maximum number of results")
}

// HealthResponse matches internal/httpapi HealthResponse
type HealthResponse struct {
	Status string `json:"status"`
}

// POI matches internal/extraction POI
type POI struct {
	Name       string  `json:"name"`
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
}

// ExtractResponse matches internal/httpapi ExtractResponse
type ExtractResponse struct {
	POIs  []POI `json:"pois"`
	Count int   `json:"count"`
}

// SearchResult matches internal/vectorstore SearchResult
type SearchResult struct {
	ID       string            `json:"id"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata"`
	Score    float32           `json:"score"`
}

// SearchResponse matches internal/httpapi SearchResponse
type SearchResponse struct {
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

func newClient() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

func newRequest(method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, serverURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}
	return req, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
	}
	return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	req, err := newRequest("GET", "/health", nil)
	if err != nil {
		return err
	}

	resp, err := newClient().Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", serverURL, err)
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", healthResp.Status)
	fmt.Printf("Server URL: %s\n", serverURL)

	return nil
}

// runExtract handles the extract command
func runExtract(cmd *cobra.Command, args []string) error {
	var content []byte
	var err error

	if len(args) == 0 || args[0] == "-" {
		content, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		content, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
	}

	if len(content) == 0 {
		return fmt.Errorf("no itinerary to extract from")
	}

	req, err := newRequest("POST", "/api/v1/extract", bytes.NewReader(content))
	if err != nil {
		return err
	}

	resp, err := newClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var extractResp ExtractResponse
	if err := json.NewDecoder(resp.Body).Decode(&extractResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if extractResp.Count == 0 {
		fmt.Println("No POIs found.")
		return nil
	}

	for _, poi := range extractResp.POIs {
		fmt.Printf("%-40s %-14s %.2f  %s, %s\n", poi.Name, poi.Category, poi.Confidence, poi.City, poi.Country)
	}
	fmt.Fprintf(os.Stderr, "\n[tripctl] Extracted %d POI(s)\n", extractResp.Count)

	return nil
}

// runStats handles the stats command
func runStats(cmd *cobra.Command, args []string) error {
	req, err := newRequest("GET", "/api/v1/service/stats", nil)
	if err != nil {
		return err
	}

	resp, err := newClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return fmt.Errorf("failed to format response: %w", err)
	}
	fmt.Println(pretty.String())

	return nil
}

// runThreshold handles the threshold command
func runThreshold(cmd *cobra.Command, args []string) error {
	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid threshold %q: %w", args[0], err)
	}

	reqJSON, err := json.Marshal(map[string]float64{"confidence_threshold": value})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := newRequest("PUT", "/api/v1/service/config", bytes.NewReader(reqJSON))
	if err != nil {
		return err
	}

	resp, err := newClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	fmt.Printf("Confidence threshold set to %g\n", value)
	return nil
}

// runSearch handles the search command
func runSearch(cmd *cobra.Command, args []string) error {
	query := url.Values{}
	query.Set("q", args[0])
	query.Set("k", strconv.Itoa(searchLimit))

	req, err := newRequest("GET", "/api/v1/search?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := newClient().Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", serverURL, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if searchResp.Count == 0 {
		fmt.Println("No matching trips.")
		return nil
	}

	for _, r := range searchResp.Results {
		fmt.Printf("%.3f  %s\n", r.Score, r.ID)
		if dest := r.Metadata["destination"]; dest != "" {
			fmt.Printf("       destination: %s\n", dest)
		}
		if names := r.Metadata["poi_names"]; names != "" {
			fmt.Printf("       pois: %s\n", names)
		}
	}

	return nil
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "xfetch",
		Short: "X-Fetch CLI - fetch the video or images of an X/Twitter post",
		Long:  `A command-line interface that downloads the media of an X/Twitter post, through the X-Fetch server or locally.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(logsCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [url]",
	Short: "Download the video or images of a post",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		outputDir, _ := cmd.Flags().GetString("output")
		local, _ := cmd.Flags().GetBool("local")
		configPath, _ := cmd.Flags().GetString("config")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fs := afero.NewOsFs()
		if err := fs.MkdirAll(outputDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var (
			result *fetchResult
			err    error
		)
		if local {
			result, err = fetchLocal(ctx, fs, configPath, args[0], outputDir)
		} else {
			ensureServer()
			client := newFetchClient(serverURL, fs)
			result, err = client.Fetch(ctx, args[0], outputDir)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(result.Summary())
		for _, path := range result.Files {
			fmt.Printf("  %s\n", path)
		}
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/health")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var health struct {
			Status    string `json:"status"`
			Version   string `json:"version"`
			Artifacts struct {
				Pending int64 `json:"pending"`
			} `json:"artifacts"`
			Janitor struct {
				Running bool `json:"running"`
			} `json:"janitor"`
		}
		if err := json.Unmarshal(body, &health); err != nil {
			fmt.Fprintf(os.Stderr, "Error: unexpected response: %s\n", string(body))
			os.Exit(1)
		}

		fmt.Println("Server Health:")
		fmt.Printf("  Status:    %s\n", health.Status)
		fmt.Printf("  Version:   %s\n", health.Version)
		fmt.Printf("  Pending:   %d\n", health.Artifacts.Pending)
		fmt.Printf("  Janitor:   %v\n", health.Janitor.Running)
	},
}

var logsCmd = &cobra.Command{
	Use:   "logs [category]",
	Short: "Show today's acquisition or error log",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		limit, _ := cmd.Flags().GetInt("limit")
		query, _ := cmd.Flags().GetString("query")

		req, err := http.NewRequest(http.MethodGet, serverURL+"/api/v1/logs/"+args[0], nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		params := req.URL.Query()
		params.Set("limit", fmt.Sprint(limit))
		if query != "" {
			params.Set("q", query)
		}
		req.URL.RawQuery = params.Encode()

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result struct {
			Entries []struct {
				Timestamp string `json:"timestamp"`
				Level     string `json:"level"`
				Message   string `json:"message"`
			} `json:"entries"`
		}
		json.Unmarshal(body, &result)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tLEVEL\tMESSAGE")
		for _, entry := range result.Entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Timestamp, entry.Level, entry.Message)
		}
		w.Flush()
	},
}

func init() {
	fetchCmd.Flags().StringP("output", "o", ".", "Directory to save the media into")
	fetchCmd.Flags().Bool("local", false, "Run yt-dlp/gallery-dl in this process instead of the server")
	fetchCmd.Flags().StringP("config", "c", "", "Config file for --local")
	logsCmd.Flags().IntP("limit", "n", 50, "Number of entries to show")
	logsCmd.Flags().StringP("query", "q", "", "Only show entries containing this text")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/flowwatch/internal/core/domain"
)

var (
	analysisAPIKey  string
	analysisBaseURL string
	analysisModel   string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure storage, sources, the analysis endpoint and the
scheduler. Environment variables (FLOWWATCH_*) override the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsAnalysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Configure the analysis endpoint",
	Long: `Configure the OpenAI-compatible chat endpoint used for narrative
analysis. Without an API key every run still produces numeric output.

Pass --api-key to skip the interactive prompts.`,
	RunE: runSettingsAnalysis,
}

func init() {
	settingsAnalysisCmd.Flags().StringVar(&analysisAPIKey, "api-key", "", "API key")
	settingsAnalysisCmd.Flags().StringVar(&analysisBaseURL, "base-url", "", "API base URL")
	settingsAnalysisCmd.Flags().StringVar(&analysisModel, "model", "", "chat model")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsAnalysisCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir: %s\n", valueOr(settings.DataDir, "(default)"))
	cmd.Printf("  Vocabulary: %s\n", valueOr(settings.VocabularyPath, "(built-in)"))
	cmd.Println()

	cmd.Println("[Sources]")
	cmd.Printf("  API base URL: %s\n", settings.APIBaseURL)
	cmd.Printf("  Fetch timeout: %s\n", settings.FetchTimeout)
	cmd.Printf("  Request delay: %s\n", settings.RequestDelay)
	cmd.Println()

	cmd.Println("[Analysis]")
	cmd.Printf("  Base URL: %s\n", settings.Analysis.BaseURL)
	cmd.Printf("  Model: %s\n", settings.Analysis.Model)
	if settings.Analysis.APIKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Analysis.APIKey))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	status := "configured"
	if !settings.Analysis.Enabled() {
		status = "not configured (numeric output only)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Alerts]")
	if settings.ValkeyAddr != "" {
		cmd.Printf("  Dedup cache: valkey at %s\n", settings.ValkeyAddr)
	} else {
		cmd.Printf("  Dedup cache: in-process\n")
	}
	cmd.Printf("  History window: %dh\n", settings.HistoryHours)
	cmd.Printf("  Sentiment history: %d\n", settings.SentimentHistory)
	cmd.Printf("  Hot topics: %d\n", settings.HotTopicCount)
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled: %s\n", yesNo(settings.Scheduler.Enabled))
	cmd.Printf("  Tick: %s\n", settings.Scheduler.Tick)
	for _, def := range domain.TaskDefinitions {
		tc := settings.Scheduler.GetTaskConfig(def.ID)
		cmd.Printf("  %-16s %-4s every %s\n", def.ID, yesNo(tc.Enabled), tc.Interval)
	}
	return nil
}

func runSettingsAnalysis(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if analysisAPIKey != "" {
		if err := settingsService.SetAnalysis(analysisAPIKey, analysisBaseURL, analysisModel); err != nil {
			return fmt.Errorf("failed to save analysis settings: %w", err)
		}
		cmd.Println("Analysis endpoint configured.")
		return nil
	}

	current, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Analysis endpoint:")
	cmd.Printf("  1. Default (%s)\n", domain.DefaultAnalysisBaseURL)
	cmd.Println("  2. Other OpenAI-compatible endpoint")
	cmd.Print("Select [1]: ")
	baseURL := domain.DefaultAnalysisBaseURL
	if parseChoice(readLine(reader), 2, 1) == 2 {
		cmd.Printf("Base URL [%s]: ", current.Analysis.BaseURL)
		baseURL = readLine(reader)
	}

	cmd.Printf("Model [%s]: ", current.Analysis.Model)
	model := readLine(reader)

	cmd.Print("API key: ")
	apiKey := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	if apiKey == "" {
		return errors.New("an API key is required")
	}

	if err := settingsService.SetAnalysis(apiKey, baseURL, model); err != nil {
		return fmt.Errorf("failed to save analysis settings: %w", err)
	}
	cmd.Println("Analysis endpoint configured.")
	return nil
}

func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func readPassword(in io.Reader, reader *bufio.Reader) string {
	// Try to read password without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

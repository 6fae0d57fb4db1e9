package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/pharmadata-tools/labqa-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set LabQA configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("api_key: %s\n", mask(cfg.APIKey))
		fmt.Printf("default_provider: %s\n", cfg.DefaultProvider)
		fmt.Printf("default_model: %s\n", cfg.DefaultModel)
		fmt.Printf("max_tokens: %d\n", cfg.MaxTokens)
		fmt.Printf("temperature: %.3f\n", cfg.Temperature)
		fmt.Printf("zscore_threshold: %.2f\n", cfg.ZScoreThreshold)
		fmt.Printf("iqr_multiplier: %.2f\n", cfg.IQRMultiplier)
		w := cfg.QualityWeights
		fmt.Printf("quality_weights: completeness=%.2f accuracy=%.2f consistency=%.2f uniqueness=%.2f\n",
			w.Completeness, w.Accuracy, w.Consistency, w.Uniqueness)
		fmt.Printf("summary_workers: %d\n", cfg.SummaryWorkers)
		fmt.Printf("summary_rps: %.2f\n", cfg.SummaryRPS)
		fmt.Printf("database_path: %s\n", cfg.DatabasePath)
		fmt.Printf("output_dir: %s\n", cfg.OutputDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		switch key {
		case "api_key":
			cfg.APIKey = val
		case "default_model":
			cfg.DefaultModel = val
		case "default_provider":
			switch val {
			case "openrouter", "OpenRouter", "OPENROUTER":
				cfg.DefaultProvider = "openrouter"
			case "gemini", "Gemini", "GEMINI":
				cfg.DefaultProvider = "gemini"
			default:
				return fmt.Errorf("invalid default_provider: %s (use openrouter or gemini)", val)
			}
		case "max_tokens":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for max_tokens: %w", err)
			}
			cfg.MaxTokens = i
		case "temperature":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for temperature: %w", err)
			}
			cfg.Temperature = f
		case "zscore_threshold":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for zscore_threshold: %v", val)
			}
			cfg.ZScoreThreshold = f
		case "iqr_multiplier":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid float for iqr_multiplier: %v", val)
			}
			cfg.IQRMultiplier = f
		case "summary_workers":
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid int for summary_workers: %v", val)
			}
			cfg.SummaryWorkers = i
		case "summary_rps":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("invalid float for summary_rps: %v", val)
			}
			cfg.SummaryRPS = f
		case "database_path":
			cfg.DatabasePath = val
		case "output_dir":
			cfg.OutputDir = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long:  `Commands for inspecting and initializing the hyp3 CLI configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Long:  `Writes the resolved API URL, API key, and output format to $HOME/.hyp3/config.yaml.`,
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

type fileConfig struct {
	APIURL string `yaml:"api_url"`
	APIKey string `yaml:"api_key,omitempty"`
	Output string `yaml:"output,omitempty"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	key := "(not set)"
	if GetAPIKey() != "" {
		key = "(set)"
	}
	fmt.Printf("api_url: %s\n", GetAPIURL())
	fmt.Printf("api_key: %s\n", key)
	fmt.Printf("output:  %s\n", outputFormat)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to find home directory: %w", err)
	}

	configDir := filepath.Join(home, ".hyp3")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", configDir, err)
	}

	data, err := yaml.Marshal(fileConfig{
		APIURL: GetAPIURL(),
		APIKey: GetAPIKey(),
		Output: outputFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

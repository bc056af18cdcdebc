package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sarproc/hyp3-go/pkg/hyp3"
	"github.com/sarproc/hyp3-go/pkg/logging"
)

var (
	cfgFile      string
	apiURL       string
	apiKey       string
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "hyp3",
	Short: "CLI for the HyP3 batch-processing API",
	Long:  `hyp3 is a command line interface for submitting, querying, and watching asynchronous processing jobs on a HyP3-style batch API.`,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.hyp3/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API URL (default from config or the production endpoint)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output", "table", "output format: table or json")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(filepath.Join(home, ".hyp3"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	viper.BindEnv("api_key", "HYP3_API_KEY")
	viper.BindEnv("api_url", "HYP3_API_URL")

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetString("api_url") != "" && apiURL == "" {
			apiURL = viper.GetString("api_url")
		}
		if viper.GetString("output") != "" && outputFormat == "table" {
			outputFormat = viper.GetString("output")
		}
	}

	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}
	if apiURL == "" && viper.GetString("api_url") != "" {
		apiURL = viper.GetString("api_url")
	}
	if apiURL == "" {
		apiURL = hyp3.ProdURL
	}
}

// GetAPIURL returns the configured API URL with trailing slashes removed
func GetAPIURL() string {
	return strings.TrimRight(apiURL, "/")
}

// GetAPIKey returns the configured API key
func GetAPIKey() string {
	return apiKey
}

// IsJSONOutput returns true if JSON output is requested
func IsJSONOutput() bool {
	return outputFormat == "json"
}

// NewAPIClient builds a client from the resolved configuration
func NewAPIClient() *hyp3.Client {
	client := hyp3.NewClient(GetAPIURL())
	if apiKey != "" {
		client.SetAPIKey(apiKey)
	}
	level := logging.WARN
	if verbose {
		level = logging.DEBUG
	}
	client.SetLogger(logging.NewLogger(level, false))
	return client
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show remaining job quota",
	Long:  `Retrieve your user information and the number of jobs left in your monthly quota.`,
	RunE:  runQuota,
}

func init() {
	rootCmd.AddCommand(quotaCmd)
}

func runQuota(cmd *cobra.Command, args []string) error {
	client := NewAPIClient()
	info, err := client.MyInfo(context.Background())
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(output))
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Field", "Value")
	table.Append("User", info.UserID)
	table.Append("Monthly quota", fmt.Sprintf("%d", info.Quota.MaxJobsPerMonth))
	table.Append("Remaining", fmt.Sprintf("%d", info.Quota.Remaining))
	table.Render()

	return nil
}

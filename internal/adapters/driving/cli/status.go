package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	status := knowledgeService.Status(cmd.Context())

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println("Knowledge Base")
	cmd.Println("==============")
	if !status.Initialized {
		cmd.Println("  Not initialized. Run 'shoplens init' first.")
		return nil
	}
	if status.Embedding {
		cmd.Println("  Embedding in progress...")
	}
	printStatus(cmd, status)

	if settingsService != nil {
		cmd.Println()
		if err := settingsService.Validate(); err != nil {
			cmd.Printf("Configuration warning: %v\n", err)
		} else {
			cmd.Println("Configuration is valid.")
		}
	}
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// historyCmd groups prompt-history operations
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and restore generated prompts",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List history entries, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Entries []struct {
				ID        string `json:"id"`
				CreatedAt string `json:"created_at"`
				Prompt    string `json:"prompt"`
			} `json:"entries"`
		}
		if err := client.Call("history.list", nil, &result); err != nil {
			return err
		}
		if len(result.Entries) == 0 {
			fmt.Println("History is empty")
			return nil
		}
		for _, e := range result.Entries {
			prompt := e.Prompt
			if len(prompt) > 80 {
				prompt = prompt[:77] + "..."
			}
			fmt.Printf("%s  %s\n  %s\n", e.ID, e.CreatedAt, prompt)
		}
		return nil
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore <entry-id>",
	Short: "Replace the current state from a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Preview string `json:"preview"`
		}
		params := map[string]string{"id": args[0]}
		if err := client.Call("history.restore", params, &result); err != nil {
			return err
		}
		fmt.Println(result.Preview)
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <entry-id>",
	Short: "Delete a history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		params := map[string]string{"id": args[0]}
		return client.Call("history.remove", params, nil)
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all history entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		return client.Call("history.clear", nil, nil)
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export history as JSON (stdout when no file given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result json.RawMessage
		if err := client.Call("history.export", nil, &result); err != nil {
			return err
		}
		if len(args) == 1 {
			if err := os.WriteFile(args[0], result, 0644); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}
			fmt.Printf("Exported history to %s\n", args[0])
			return nil
		}
		fmt.Println(string(result))
		return nil
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace history from an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read import file: %w", err)
		}
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Imported int `json:"imported"`
			Skipped  int `json:"skipped"`
		}
		params := map[string]json.RawMessage{"data": data}
		if err := client.Call("history.import", params, &result); err != nil {
			return err
		}
		fmt.Printf("Imported %d entries", result.Imported)
		if result.Skipped > 0 {
			fmt.Printf(" (%d skipped)", result.Skipped)
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyRestoreCmd)
	historyCmd.AddCommand(historyRemoveCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyImportCmd)
}

package cmd

import (
	"fmt"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// configsCmd groups saved-preset operations
var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "Save and load named slot configurations",
}

var configsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the current state as a named preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		params := map[string]string{"name": args[0]}
		if err := client.Call("configs.save", params, nil); err != nil {
			return err
		}
		fmt.Printf("Saved preset %q\n", args[0])
		return nil
	},
}

var configsLoadCmd = &cobra.Command{
	Use:   "load <name>",
	Short: "Replace the current state from a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Preview string `json:"preview"`
		}
		params := map[string]string{"name": args[0]}
		if err := client.Call("configs.load", params, &result); err != nil {
			return err
		}
		fmt.Println(result.Preview)
		return nil
	},
}

var configsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Presets []struct {
				Name      string `json:"name"`
				UpdatedAt string `json:"updated_at"`
			} `json:"presets"`
		}
		if err := client.Call("configs.list", nil, &result); err != nil {
			return err
		}
		if len(result.Presets) == 0 {
			fmt.Println("No saved presets")
			return nil
		}
		for _, p := range result.Presets {
			fmt.Printf("%-24s %s\n", p.Name, p.UpdatedAt)
		}
		return nil
	},
}

var configsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		params := map[string]string{"name": args[0]}
		if err := client.Call("configs.delete", params, nil); err != nil {
			return err
		}
		fmt.Printf("Deleted preset %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configsCmd)
	configsCmd.AddCommand(configsSaveCmd)
	configsCmd.AddCommand(configsLoadCmd)
	configsCmd.AddCommand(configsListCmd)
	configsCmd.AddCommand(configsDeleteCmd)
}

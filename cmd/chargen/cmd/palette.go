package cmd

import (
	"fmt"
	"strings"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// paletteCmd groups palette operations
var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List and apply color palettes",
}

var paletteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available palettes",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Palettes []struct {
				ID     string   `json:"id"`
				Label  string   `json:"label"`
				Colors []string `json:"colors"`
			} `json:"palettes"`
		}
		params := map[string]string{"locale": displayLocale()}
		if err := client.Call("palettes.get", params, &result); err != nil {
			return err
		}
		for _, p := range result.Palettes {
			fmt.Printf("%-12s %-12s %s\n", p.ID, p.Label, strings.Join(p.Colors, ", "))
		}
		return nil
	},
}

var paletteApplyCmd = &cobra.Command{
	Use:   "apply <palette-id>",
	Short: "Apply a palette, recoloring current clothing selections",
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
		if err := client.Call("palette.apply", params, &result); err != nil {
			return err
		}
		fmt.Println(result.Preview)
		return nil
	},
}

var paletteLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Freeze color assignments against randomization and palette switches",
	RunE:  func(cmd *cobra.Command, args []string) error { return setPaletteLock(true) },
}

var paletteUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unfreeze color assignments",
	RunE:  func(cmd *cobra.Command, args []string) error { return setPaletteLock(false) },
}

func setPaletteLock(locked bool) error {
	client, err := daemon.NewClient()
	if err != nil {
		return err
	}
	params := map[string]interface{}{"locked": locked}
	return client.Call("palette.lock", params, nil)
}

func init() {
	rootCmd.AddCommand(paletteCmd)
	paletteCmd.AddCommand(paletteListCmd)
	paletteCmd.AddCommand(paletteApplyCmd)
	paletteCmd.AddCommand(paletteLockCmd)
	paletteCmd.AddCommand(paletteUnlockCmd)
}

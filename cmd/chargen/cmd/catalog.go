package cmd

import (
	"fmt"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// catalogCmd lists the available slots and options
var catalogCmd = &cobra.Command{
	Use:   "catalog [slot]",
	Short: "List catalog slots, or the options of one slot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Slots []struct {
				Name     string   `json:"name"`
				Category string   `json:"category"`
				HasColor bool     `json:"has_color"`
				Groups   []string `json:"groups"`
				Options  []struct {
					ID    string `json:"id"`
					Label string `json:"label"`
					Group string `json:"group"`
				} `json:"options"`
			} `json:"slots"`
		}
		params := map[string]string{"locale": displayLocale()}
		if err := client.Call("catalog.get", params, &result); err != nil {
			return err
		}

		if len(args) == 1 {
			for _, s := range result.Slots {
				if s.Name != args[0] {
					continue
				}
				for _, opt := range s.Options {
					if opt.Group != "" {
						fmt.Printf("%-24s %-20s [%s]\n", opt.ID, opt.Label, opt.Group)
					} else {
						fmt.Printf("%-24s %s\n", opt.ID, opt.Label)
					}
				}
				return nil
			}
			return fmt.Errorf("unknown slot %q", args[0])
		}

		for _, s := range result.Slots {
			line := fmt.Sprintf("%-24s %-12s %d options", s.Name, s.Category, len(s.Options))
			if s.HasColor {
				line += " [color]"
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

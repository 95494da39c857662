package cmd

import (
	"fmt"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// randomizeCmd draws random options for one slot or all eligible slots
var randomizeCmd = &cobra.Command{
	Use:   "randomize [slot]",
	Short: "Randomize one slot, or every eligible slot",
	Long: `Randomize slot selections. With a slot name only that slot is drawn;
without arguments every enabled, unlocked slot gets a fresh option.
Disabled option groups are excluded from the draw, and clothing slots
pick a color from the active palette.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}

		if len(args) == 1 {
			var result struct {
				Value string `json:"value"`
				Color string `json:"color"`
			}
			params := map[string]string{"slot": args[0]}
			if err := client.Call("slots.randomize", params, &result); err != nil {
				return err
			}
			if result.Color != "" {
				fmt.Printf("%s -> %s %s\n", args[0], result.Color, result.Value)
			} else {
				fmt.Printf("%s -> %s\n", args[0], result.Value)
			}
			return nil
		}

		var result struct {
			Preview string `json:"preview"`
		}
		if err := client.Call("slots.randomizeAll", nil, &result); err != nil {
			return err
		}
		fmt.Println(result.Preview)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(randomizeCmd)
}

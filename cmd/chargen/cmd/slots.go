package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

// slotCmd groups slot-level operations
var slotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Inspect and mutate individual slots",
}

var slotSetCmd = &cobra.Command{
	Use:   "set <slot> <option-id>",
	Short: "Select an option for a slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Preview string `json:"preview"`
		}
		params := map[string]string{"slot": args[0], "value": args[1]}
		if err := client.Call("slots.set", params, &result); err != nil {
			return err
		}
		fmt.Println(result.Preview)
		return nil
	},
}

var slotClearCmd = &cobra.Command{
	Use:   "clear <slot>",
	Short: "Clear a slot's selection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		params := map[string]string{"slot": args[0], "value": ""}
		return client.Call("slots.set", params, nil)
	},
}

var slotToggleCmd = &cobra.Command{
	Use:   "toggle <slot>",
	Short: "Toggle a slot on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Enabled bool `json:"enabled"`
		}
		params := map[string]string{"slot": args[0]}
		if err := client.Call("slots.toggle", params, &result); err != nil {
			return err
		}
		if result.Enabled {
			fmt.Printf("%s enabled\n", args[0])
		} else {
			fmt.Printf("%s disabled\n", args[0])
		}
		return nil
	},
}

var slotLockCmd = &cobra.Command{
	Use:   "lock <slot>",
	Short: "Lock a slot so randomization skips it",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setLock(args[0], true) },
}

var slotUnlockCmd = &cobra.Command{
	Use:   "unlock <slot>",
	Short: "Unlock a slot",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return setLock(args[0], false) },
}

func setLock(slot string, locked bool) error {
	client, err := daemon.NewClient()
	if err != nil {
		return err
	}
	params := map[string]interface{}{"slot": slot, "locked": locked}
	return client.Call("slots.lock", params, nil)
}

var slotColorCmd = &cobra.Command{
	Use:   "color <slot> <color>",
	Short: "Set a color on a clothing slot (empty color clears)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		color := ""
		if len(args) == 2 {
			color = args[1]
		}
		params := map[string]string{"slot": args[0], "color": color}
		return client.Call("slots.color", params, nil)
	},
}

var slotWeightCmd = &cobra.Command{
	Use:   "weight <slot> <weight>",
	Short: "Set the emphasis weight for a slot (0.1-2.0)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid weight %q: %w", args[1], err)
		}
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Weight float64 `json:"weight"`
		}
		params := map[string]interface{}{"slot": args[0], "weight": w}
		if err := client.Call("slots.weight", params, &result); err != nil {
			return err
		}
		fmt.Printf("%s weight set to %.1f\n", args[0], result.Weight)
		return nil
	},
}

var slotShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current state of all slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Slots map[string]struct {
				Value   string  `json:"value"`
				Enabled bool    `json:"enabled"`
				Locked  bool    `json:"locked"`
				Color   string  `json:"color"`
				Weight  float64 `json:"weight"`
			} `json:"slots"`
			FullBodyMode  bool `json:"full_body_mode"`
			UpperBodyMode bool `json:"upper_body_mode"`
		}
		if err := client.Call("state.get", nil, &result); err != nil {
			return err
		}

		names := make([]string, 0, len(result.Slots))
		for name := range result.Slots {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			st := result.Slots[name]
			marker := " "
			if !st.Enabled {
				marker = "-"
			}
			line := fmt.Sprintf("%s %-24s %s", marker, name, st.Value)
			if st.Color != "" {
				line += fmt.Sprintf(" [%s]", st.Color)
			}
			if st.Weight != 1.0 {
				line += fmt.Sprintf(" (x%.1f)", st.Weight)
			}
			if st.Locked {
				line += " [locked]"
			}
			fmt.Println(line)
		}
		if result.FullBodyMode {
			fmt.Println("\nfull-body outfit mode active")
		}
		if result.UpperBodyMode {
			fmt.Println("\nupper-body shot mode active")
		}
		return nil
	},
}

var slotGroupCmd = &cobra.Command{
	Use:   "group <toggle|solo> <slot> <group>",
	Short: "Toggle or solo an option group on a slot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var method string
		switch args[0] {
		case "toggle":
			method = "groups.toggle"
		case "solo":
			method = "groups.solo"
		default:
			return fmt.Errorf("unknown group action %q (want toggle or solo)", args[0])
		}
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		params := map[string]string{"slot": args[1], "group": args[2]}
		return client.Call(method, params, nil)
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all slots to factory defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		return client.Call("state.reset", nil, nil)
	},
}

// modeCmd toggles the one-shot composition modes
var modeCmd = &cobra.Command{
	Use:   "mode <full-body|upper-body>",
	Short: "Toggle a one-shot composition mode",
	Long: `Toggle a one-shot composition mode. Full-body mode swaps the
individual clothing slots for a single outfit slot; upper-body mode hides
everything below the waist. Toggling again restores the slots that were
enabled when the mode was entered.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var method string
		switch args[0] {
		case "full-body":
			method = "modes.fullBody"
		case "upper-body":
			method = "modes.upperBody"
		default:
			return fmt.Errorf("unknown mode %q (want full-body or upper-body)", args[0])
		}
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}
		var result struct {
			Active bool `json:"active"`
		}
		if err := client.Call(method, nil, &result); err != nil {
			return err
		}
		if result.Active {
			fmt.Printf("%s mode enabled\n", args[0])
		} else {
			fmt.Printf("%s mode disabled\n", args[0])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(slotCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(modeCmd)

	slotCmd.AddCommand(slotSetCmd)
	slotCmd.AddCommand(slotClearCmd)
	slotCmd.AddCommand(slotToggleCmd)
	slotCmd.AddCommand(slotLockCmd)
	slotCmd.AddCommand(slotUnlockCmd)
	slotCmd.AddCommand(slotColorCmd)
	slotCmd.AddCommand(slotWeightCmd)
	slotCmd.AddCommand(slotShowCmd)
	slotCmd.AddCommand(slotGroupCmd)
}

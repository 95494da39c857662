package cmd

import (
	"fmt"
	"strings"

	"chargen/src/daemon"

	"github.com/spf13/cobra"
)

var previewOnly bool

// generateCmd renders the current slot state into a prompt
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the current state into a prompt",
	Long: `Render the current slot state into a prompt string. Without
--preview the result is committed to history; identical back-to-back
generates produce a single history entry.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}

		if previewOnly {
			var result struct {
				Prompt string `json:"prompt"`
			}
			if err := client.Call("prompt.preview", nil, &result); err != nil {
				return err
			}
			fmt.Println(result.Prompt)
			return nil
		}

		var result struct {
			Prompt  string `json:"prompt"`
			EntryID string `json:"entry_id"`
			Added   bool   `json:"added"`
		}
		if err := client.Call("prompt.generate", nil, &result); err != nil {
			return err
		}
		fmt.Println(result.Prompt)
		if !result.Added {
			fmt.Println("(unchanged since last generate, not re-added to history)")
		}
		return nil
	},
}

var applyParse bool

// parseCmd maps an existing prompt string back onto slots
var parseCmd = &cobra.Command{
	Use:   "parse [prompt]",
	Short: "Resolve an existing prompt string against the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}

		method := "prompt.parse"
		if applyParse {
			method = "prompt.import"
		}

		var result struct {
			Slots        map[string]interface{} `json:"slots"`
			Unmatched    []string               `json:"unmatched"`
			MatchedCount int                    `json:"matched_count"`
			TotalTokens  int                    `json:"total_tokens"`
			Confidence   float64                `json:"confidence"`
		}
		params := map[string]string{"prompt": strings.Join(args, " ")}
		if err := client.Call(method, params, &result); err != nil {
			return err
		}

		fmt.Printf("Matched %d of %d tags (confidence %.2f)\n",
			result.MatchedCount, result.TotalTokens, result.Confidence)
		if len(result.Unmatched) > 0 {
			fmt.Printf("Unmatched: %s\n", strings.Join(result.Unmatched, ", "))
		}
		if applyParse {
			fmt.Println("Applied matches to slot state")
		}
		return nil
	},
}

// prefixCmd sets the free-text prompt prefix
var prefixCmd = &cobra.Command{
	Use:   "prefix [text]",
	Short: "Set the free-text prefix prepended to generated prompts",
	Long: `Set the free-text prefix. Pass no arguments to clear it. The
prefix merges with the generated tags according to its trailing
punctuation, so "masterpiece, " concatenates directly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := daemon.NewClient()
		if err != nil {
			return err
		}

		var result struct {
			Preview string `json:"preview"`
		}
		params := map[string]string{"prefix": strings.Join(args, " ")}
		if err := client.Call("prompt.prefix", params, &result); err != nil {
			return err
		}
		fmt.Println(result.Preview)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(prefixCmd)

	generateCmd.Flags().BoolVar(&previewOnly, "preview", false, "Render without committing to history")
	parseCmd.Flags().BoolVar(&applyParse, "apply", false, "Apply matched tags to the slot state")
}

package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Config file
	cfgFile string

	// Display locale for catalog labels
	locale string
)

// displayLocale resolves the label locale through viper so the --locale
// flag, the CHARGEN_PROMPT_UI_LOCALE variable, and the config file's
// prompt.ui_locale key all feed the same setting.
func displayLocale() string {
	return viper.GetString("prompt.ui_locale")
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "chargen",
	Short: "Interactive character prompt configurator for image generation",
	Long: `chargen composes image-generation prompts from a slot-based character
catalog: hair, eyes, body, clothing, pose, and background slots with
constraint-aware randomization, color palettes, and prompt history.

Most commands talk to the chargen daemon over its unix socket; start it
with 'chargen daemon start'.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/chargen/config.toml)")
	rootCmd.PersistentFlags().StringVar(&locale, "locale", "", "display locale for catalog labels (en, zh)")

	viper.BindPFlag("prompt.ui_locale", rootCmd.PersistentFlags().Lookup("locale"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home + "/.config/chargen")
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("CHARGEN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Ignore missing config file; defaults cover everything
	viper.ReadInConfig()
}

package cmd

import "testing"

func TestDisplayLocaleFromEnv(t *testing.T) {
	t.Setenv("CHARGEN_PROMPT_UI_LOCALE", "zh")
	initConfig()

	if got := displayLocale(); got != "zh" {
		t.Errorf("displayLocale() = %q, want zh", got)
	}
}

func TestDisplayLocaleFlagWins(t *testing.T) {
	t.Setenv("CHARGEN_PROMPT_UI_LOCALE", "zh")
	initConfig()

	if err := rootCmd.PersistentFlags().Set("locale", "en"); err != nil {
		t.Fatal(err)
	}
	if got := displayLocale(); got != "en" {
		t.Errorf("displayLocale() = %q, want en", got)
	}
}

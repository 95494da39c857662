package i18n

import "testing"

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"zh", "zh"},
		{"zh-CN", "zh"},
		{"ZH-TW", "zh"},
		{"fr", "en"},
		{"", "en"},
		{"  zh  ", "zh"},
	}

	for _, tt := range tests {
		if got := NormalizeLocale(tt.in); got != tt.want {
			t.Errorf("NormalizeLocale(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLocalize(t *testing.T) {
	labels := LabelMap{"en": "ponytail", "zh": "马尾"}

	tests := []struct {
		name     string
		labels   LabelMap
		locale   string
		fallback string
		want     string
	}{
		{"exact match", labels, "zh", "x", "马尾"},
		{"english default", labels, "en", "x", "ponytail"},
		{"unknown falls to en", labels, "de", "x", "ponytail"},
		{"nil map uses fallback", nil, "en", "raw", "raw"},
		{"missing en uses fallback", LabelMap{"zh": "马尾"}, "en", "raw", "raw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Localize(tt.labels, tt.locale, tt.fallback); got != tt.want {
				t.Errorf("Localize() = %q, want %q", got, tt.want)
			}
		})
	}
}

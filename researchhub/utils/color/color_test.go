package color

import (
	"testing"

	"github.com/fatih/color"
)

func TestPlainWhenDisabled(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	for _, f := range []func(string) string{Info, Success, Warning, Error} {
		if got := f("hub"); got != "hub" {
			t.Errorf("expected plain text, got %q", got)
		}
	}
}

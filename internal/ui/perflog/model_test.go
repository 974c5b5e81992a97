package perflog

import (
	"testing"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

func TestTruncateKeepsRunesIntact(t *testing.T) {
	cases := []struct {
		name  string
		input string
		max   int
	}{
		{"ascii", "Won 2 of 3 against the club ladder", 16},
		{"multibyte", "Spielstätte München Süd-Ost", 18},
		{"cjk", "東京オープン準決勝で勝利", 16},
		{"emoji", "Great session 🏓🏓🏓 at the rec center", 20},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := truncate(c.input, c.max)
			if !utf8.ValidString(got) {
				t.Fatalf("truncate produced invalid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > c.max {
				t.Errorf("truncated width %d exceeds %d: %q", w, c.max, got)
			}
		})
	}
}

func TestTruncateShortStringUnchanged(t *testing.T) {
	if got := truncate("Löwenbräu", 18); got != "Löwenbräu" {
		t.Errorf("expected short string unchanged, got %q", got)
	}
}

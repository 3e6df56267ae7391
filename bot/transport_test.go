package bot

import (
	"errors"
	"testing"

	"github.com/m3rciful/cotabot/cota"
)

func TestSplitToken(t *testing.T) {
	cases := []struct {
		token   string
		verb    string
		payload string
	}{
		{"show_cota 3", "show_cota", "3"},
		{"close_ibox", "close_ibox", ""},
		{"set_type 1", "set_type", "1"},
	}
	for _, tc := range cases {
		verb, payload := splitToken(tc.token)
		if verb != tc.verb || payload != tc.payload {
			t.Fatalf("splitToken(%q) = (%q, %q), want (%q, %q)",
				tc.token, verb, payload, tc.verb, tc.payload)
		}
	}
}

func TestMapTeleError(t *testing.T) {
	if got := mapTeleError(nil); got != nil {
		t.Fatalf("nil error mapped to %v", got)
	}
	if got := mapTeleError(errors.New("telegram: message is not modified (400)")); got != nil {
		t.Fatalf("not-modified should be swallowed, got %v", got)
	}
	for _, desc := range []string{
		"telegram: message to edit not found (400)",
		"telegram: message can't be deleted (400)",
	} {
		if got := mapTeleError(errors.New(desc)); !errors.Is(got, cota.ErrStaleMessage) {
			t.Fatalf("%q mapped to %v, want ErrStaleMessage", desc, got)
		}
	}
	other := errors.New("telegram: bot was blocked by the user (403)")
	if got := mapTeleError(other); got != other {
		t.Fatalf("unrelated error mapped to %v", got)
	}
}

func TestToMarkupShape(t *testing.T) {
	grid := [][]cota.Button{
		{{Text: "(2) Lunch - R$ 50.00", Token: "show_cota 1"}},
		{{Text: "Fechar", Token: "close_ibox"}, {Text: "Nova Cota", Token: "new_cota"}},
	}
	markup := toMarkup(grid)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[0]) != 1 || len(markup.InlineKeyboard[1]) != 2 {
		t.Fatal("row widths do not match the grid")
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "(2) Lunch - R$ 50.00" {
		t.Fatalf("button text = %q", btn.Text)
	}
	if btn.Unique != "show_cota" || btn.Data != "1" {
		t.Fatalf("button routing = (%q, %q)", btn.Unique, btn.Data)
	}
	plain := markup.InlineKeyboard[1][0]
	if plain.Unique != "close_ibox" || plain.Data != "" {
		t.Fatalf("argless button routing = (%q, %q)", plain.Unique, plain.Data)
	}
}

func TestEditableMessageSig(t *testing.T) {
	sig, chat := editable{chatID: -100123, messageID: 55}.MessageSig()
	if sig != "55" || chat != -100123 {
		t.Fatalf("sig = (%q, %d)", sig, chat)
	}
}

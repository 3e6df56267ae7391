package keyboard

import "testing"

func TestInlineButtonsRowsKeepsShape(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "A", Unique: "a", Data: "1"}},
		[]InlineBtn{{Text: "B", Unique: "b"}, {Text: "C", Unique: "c", Data: "3"}},
	)
	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("rows = %d, want 2", len(markup.InlineKeyboard))
	}
	if len(markup.InlineKeyboard[1]) != 2 {
		t.Fatalf("second row = %d buttons, want 2", len(markup.InlineKeyboard[1]))
	}
	btn := markup.InlineKeyboard[0][0]
	if btn.Text != "A" || btn.Unique != "a" || btn.Data != "1" {
		t.Fatalf("button = %+v", btn)
	}
	if markup.InlineKeyboard[1][0].Data != "" {
		t.Fatal("dataless button should keep empty payload")
	}
}

func TestInlineButtonsNPerRow(t *testing.T) {
	buttons := []InlineBtn{
		{Text: "1", Unique: "u1"},
		{Text: "2", Unique: "u2"},
		{Text: "3", Unique: "u3"},
		{Text: "4", Unique: "u4"},
		{Text: "5", Unique: "u5"},
	}
	markup := InlineButtonsNPerRow(buttons, 2)
	widths := make([]int, 0, len(markup.InlineKeyboard))
	for _, row := range markup.InlineKeyboard {
		widths = append(widths, len(row))
	}
	if len(widths) != 3 || widths[0] != 2 || widths[1] != 2 || widths[2] != 1 {
		t.Fatalf("row widths = %v, want [2 2 1]", widths)
	}

	single := InlineButtons(buttons[:2])
	if len(single.InlineKeyboard) != 2 || len(single.InlineKeyboard[0]) != 1 {
		t.Fatal("one button per row expected")
	}
}

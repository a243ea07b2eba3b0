package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/key"
)

func TestStatusBar_Render_SingleItem(t *testing.T) {
	sb := NewStatusBar()
	result := sb.Render(50, []string{"q Quit"})

	if !strings.Contains(result, "q Quit") {
		t.Errorf("expected result to contain 'q Quit', got: %s", result)
	}
}

func TestStatusBar_Render_MultipleItems(t *testing.T) {
	sb := NewStatusBar()
	items := []string{"hjkl navigate", "m move", "q quit"}
	result := sb.Render(60, items)

	for _, item := range items {
		if !strings.Contains(result, item) {
			t.Errorf("expected result to contain %q, got: %s", item, result)
		}
	}
	if !strings.Contains(result, "hjkl navigate • m move • q quit") {
		t.Errorf("expected items to be joined with ' • ', got: %s", result)
	}
}

func TestStatusBar_Render_EmptyItems(t *testing.T) {
	sb := NewStatusBar()

	// Must not panic.
	_ = sb.Render(50, []string{})
}

func TestStatusBar_Render_NarrowWidth(t *testing.T) {
	sb := NewStatusBar()
	result := sb.Render(20, []string{"hjkl navigate", "enter open", "q quit"})

	if result == "" {
		t.Error("expected non-empty result even with narrow width")
	}
}

func TestHelpItems(t *testing.T) {
	disabled := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "hidden"))
	disabled.SetEnabled(false)

	items := HelpItems(
		key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new")),
		disabled,
		key.NewBinding(key.WithKeys("z")),
		key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	)

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %v", items)
	}
	if items[0] != "n new" || items[1] != "q quit" {
		t.Errorf("unexpected items %v", items)
	}
}

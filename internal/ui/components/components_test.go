package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func key(r rune) tea.KeyPressMsg { return tea.KeyPressMsg{Code: r, Text: string(r)} }

func TestMenuSkipsDisabled(t *testing.T) {
	called := false
	m := NewMenu([]MenuItem{
		{Label: "off", Disabled: true},
		{Label: "one", Action: func() tea.Cmd { called = true; return nil }},
		{Label: "off", Disabled: true},
		{Label: "two"},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want 1", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if m.Selected != 3 {
		t.Errorf("Selected = %d, want 3", m.Selected)
	}
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if !called {
		t.Error("expected action of item one")
	}
	if got := m.DisabledSet(); !got[0] || !got[2] || got[1] {
		t.Errorf("DisabledSet = %v", got)
	}
}

func TestMultiChoicePick(t *testing.T) {
	m := NewMultiChoice([]string{"a", "b", "c", "d"})

	m, picked := m.Update(key('3'))
	if picked != 3 || m.Selected != 2 {
		t.Errorf("picked %d selected %d, want 3 and 2", picked, m.Selected)
	}
	_, picked = m.Update(key('9'))
	if picked != 0 {
		t.Errorf("picked %d for out of range key", picked)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	m, picked = m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if picked != 4 {
		t.Errorf("picked %d, want 4", picked)
	}

	m.Reveal(3, 0)
	if _, picked = m.Update(key('1')); picked != 0 {
		t.Error("revealed component must ignore input")
	}
	if !strings.Contains(m.View(), "4)  d") {
		t.Errorf("unexpected view:\n%s", m.View())
	}
}

func TestTextInputReset(t *testing.T) {
	ti := NewTextInput("answer", 40)
	ti.Model.SetValue("Haus")
	ti.Submit(true)
	if !ti.Submitted() {
		t.Fatal("expected submitted")
	}
	ti, _ = ti.Update(key('x'))
	if ti.Value() != "Haus" {
		t.Errorf("submitted input changed to %q", ti.Value())
	}
	ti.Reset()
	if ti.Value() != "" || ti.Submitted() {
		t.Error("reset did not clear input")
	}
}

func TestProgressBarCaption(t *testing.T) {
	v := NewProgressBar("", 3, 12, "", 40).View()
	if !strings.Contains(v, "3 / 12") {
		t.Errorf("missing caption:\n%s", v)
	}
}

func TestRenderPrompt(t *testing.T) {
	out := RenderPrompt("Setze das **deutsche** Wort für **house** ein: ___")
	for _, want := range []string{"deutsche", "house", "___"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if strings.Contains(out, "**") {
		t.Errorf("emphasis markers left in %q", out)
	}
}

func TestContentWidth(t *testing.T) {
	if ContentWidth(200) != 60 || ContentWidth(10) != 20 || ContentWidth(50) != 44 {
		t.Error("unexpected content widths")
	}
}

// # cmd/courseplan/ui_test.go
package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"courseplan/internal/catalog"
)

func uiModel(t *testing.T) model {
	t.Helper()
	m := initialModel(newShellApp(t))
	m.list.SetSize(80, 24)

	next, _ := m.Update(coursesMsg{courses: []catalog.Course{
		{Number: "CS100", Title: "Fundamentals"},
		{Number: "CS101", Title: "Intro to CS", Prerequisites: []string{"CS100"}},
		{Number: "MATH201", Title: "Calculus"},
	}})
	return next.(model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// quits reports whether cmd resolves to a quit message.
func quits(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestUI_TypingInFilterDoesNotQuit(t *testing.T) {
	m := uiModel(t)

	next, _ := m.Update(keyRune('/'))
	m = next.(model)
	if !m.list.SettingFilter() {
		t.Fatal("expected / to start filtering")
	}

	// q is the quit key in normal mode; while filtering it is input.
	next, cmd := m.Update(keyRune('q'))
	m = next.(model)
	if quits(cmd) {
		t.Fatal("q typed into the filter must not quit the program")
	}
	if !m.list.SettingFilter() {
		t.Error("expected filtering to continue after typing q")
	}

	// enter confirms the filter query instead of opening the detail pane
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.detail != nil {
		t.Error("enter while filtering must not open the detail pane")
	}
	if m.list.SettingFilter() {
		t.Error("expected enter to confirm the filter query")
	}
}

func TestUI_ReloadKeyIgnoredWhileFiltering(t *testing.T) {
	m := uiModel(t)

	next, _ := m.Update(keyRune('/'))
	m = next.(model)

	next, cmd := m.Update(keyRune('r'))
	m = next.(model)
	if cmd != nil {
		switch cmd().(type) {
		case coursesReloadedMsg, coursesMsg:
			t.Error("r typed into the filter must not trigger a reload")
		}
	}
	if !m.list.SettingFilter() {
		t.Error("expected filtering to continue after typing r")
	}
}

func TestUI_EnterOpensDetailAndQCloses(t *testing.T) {
	m := uiModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	if m.detail == nil {
		t.Fatal("expected enter to open the detail pane")
	}
	if m.detail.Number != "CS100" {
		t.Errorf("expected detail for the selected course, got %q", m.detail.Number)
	}

	next, cmd := m.Update(keyRune('q'))
	m = next.(model)
	if quits(cmd) {
		t.Fatal("q on the detail pane must close it, not quit")
	}
	if m.detail != nil {
		t.Fatal("expected q to close the detail pane")
	}

	_, cmd = m.Update(keyRune('q'))
	if !quits(cmd) {
		t.Error("expected q on the list to quit")
	}
}

func TestUI_CtrlCAlwaysQuits(t *testing.T) {
	m := uiModel(t)

	next, _ := m.Update(keyRune('/'))
	m = next.(model)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !quits(cmd) {
		t.Error("expected ctrl+c to quit even while filtering")
	}
}

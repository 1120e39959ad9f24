// # cmd/courseplan/ui.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"courseplan/internal/catalog"
)

var (
	titleStyle = lipgloss.NewStyle().
			MarginLeft(2).
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true).
			Render

	docStyle = lipgloss.NewStyle().Margin(1, 2)

	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	prereqStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)
)

type courseItem struct {
	course catalog.Course
}

func (i courseItem) Title() string { return i.course.Number }
func (i courseItem) Description() string {
	if len(i.course.Prerequisites) == 0 {
		return i.course.Title
	}
	return fmt.Sprintf("%s (prereqs: %s)", i.course.Title, strings.Join(i.course.Prerequisites, ", "))
}
func (i courseItem) FilterValue() string { return i.course.Number + " " + i.course.Title }

type model struct {
	app        *App
	list       list.Model
	detail     *catalog.Course
	lastUpdate time.Time
	loadErr    string
}

// coursesReloadedMsg arrives from watch mode or the r key after a reload.
type coursesReloadedMsg struct{}

type coursesMsg struct {
	courses []catalog.Course
	err     error
}

func (m model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		courses, err := m.app.Store.AllSorted()
		return coursesMsg{courses: courses, err: err}
	}
}

func (m model) reloadCmd() tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.LoadCatalog("")
		if err != nil {
			return coursesMsg{err: err}
		}
		return coursesReloadedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	return m.refreshCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// While the user is typing a filter query, printable keys belong to
		// the filter input, not the global bindings.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.list.SettingFilter() {
				break
			}
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			if m.detail != nil {
				m.detail = nil
				return m, nil
			}
		case "enter":
			if m.list.SettingFilter() {
				break
			}
			if m.detail == nil {
				if item, ok := m.list.SelectedItem().(courseItem); ok {
					c := item.course
					m.detail = &c
				}
				return m, nil
			}
		case "r":
			if !m.list.SettingFilter() {
				return m, m.reloadCmd()
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v-4)

	case coursesReloadedMsg:
		return m, m.refreshCmd()

	case coursesMsg:
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.lastUpdate = time.Now()
		items := make([]list.Item, 0, len(msg.courses))
		for _, c := range msg.courses {
			items = append(items, courseItem{course: c})
		}
		m.list.SetItems(items)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) View() string {
	status := statusStyle.Render(fmt.Sprintf("Last update: %v | %d courses | %s store",
		m.lastUpdate.Format("15:04:05"), len(m.list.Items()), m.app.Config.Store.Backend))
	if m.loadErr != "" {
		status += " | " + errorStyle.Render(m.loadErr)
	}

	header := fmt.Sprintf("%s\n%s\n", titleStyle("Course Planner"), status)

	if m.detail != nil {
		prereqs := "None"
		if len(m.detail.Prerequisites) > 0 {
			prereqs = strings.Join(m.detail.Prerequisites, ", ")
		}
		body := fmt.Sprintf("%s, %s\nPrerequisites: %s",
			m.detail.Number, m.detail.Title, prereqStyle.Render(prereqs))
		return docStyle.Render(header + "\n" + detailStyle.Render(body) +
			"\n\n" + statusStyle.Render("esc back | q quit"))
	}

	return docStyle.Render(header + "\n" + m.list.View())
}

func initialModel(app *App) model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Courses"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)

	return model{
		app:        app,
		list:       l,
		lastUpdate: time.Now(),
	}
}

func (a *App) RunUI() error {
	p := tea.NewProgram(initialModel(a), tea.WithAltScreen())

	a.mu.Lock()
	a.teaProgram = p
	a.mu.Unlock()

	_, err := p.Run()

	a.mu.Lock()
	a.teaProgram = nil
	a.mu.Unlock()

	return err
}

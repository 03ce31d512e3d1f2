package browse

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	title   string
	options []string
	cursor  int
	chosen  int // -1 = no choice yet or quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen = -1
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.options)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.options) > 0 {
				m.chosen = m.cursor
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render(m.title))
	b.WriteByte('\n')

	for i, opt := range m.options {
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> " + opt))
		} else {
			b.WriteString(pickerItemStyle.Render(opt))
		}
		b.WriteByte('\n')
	}

	b.WriteString(pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit"))
	return b.String()
}

// RunPicker shows an interactive single-choice list and returns the chosen
// option, or ok=false if the user quit.
func RunPicker(title string, options []string) (choice string, ok bool, err error) {
	p := tea.NewProgram(pickerModel{title: title, options: options, chosen: -1})
	result, err := p.Run()
	if err != nil {
		return "", false, err
	}
	final := result.(pickerModel)
	if final.chosen < 0 {
		return "", false, nil
	}
	return final.options[final.chosen], true, nil
}

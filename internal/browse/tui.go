// Package browse is the interactive terminal view over a user's ranked matches.
package browse

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/jobsnap/internal/match"
	"github.com/amishk599/jobsnap/internal/model"
)

// Lines per match in the list view (title + subtitle + blank separator).
const itemHeight = 3

const pageTimeout = 30 * time.Second

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	titleStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	scoreStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// PageFunc loads one page of ranked matches.
type PageFunc func(ctx context.Context, page int) (match.MatchPage, error)

type pageLoadedMsg struct {
	page match.MatchPage
	err  error
}

type browseModel struct {
	userID   string
	loadPage PageFunc

	page    match.MatchPage
	pageNum int
	cursor  int
	loading bool
	err     string
	spinner spinner.Model

	list   viewport.Model
	detail viewport.Model
	width  int
	height int
	ready  bool

	view            viewState
	showDescription bool
}

func newBrowseModel(userID string, first match.MatchPage, loadPage PageFunc) browseModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return browseModel{
		userID:   userID,
		loadPage: loadPage,
		page:     first,
		pageNum:  max(first.Pagination.Page, 1),
		spinner:  sp,
	}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detail.Width = m.width - 4
			m.detail.Height = m.height - 4
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = fmt.Sprintf("failed to load page: %v", msg.err)
			return m, nil
		}
		m.err = ""
		m.page = msg.page
		m.pageNum = msg.page.Pagination.Page
		m.cursor = 0
		m.list.SetYOffset(0)
		m.recalcContent()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m browseModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		return m, nil
	case "n", "right":
		if m.pageNum < m.page.Pagination.Pages {
			return m.gotoPage(m.pageNum + 1)
		}
		return m, nil
	case "p", "left":
		if m.pageNum > 1 {
			return m.gotoPage(m.pageNum - 1)
		}
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m browseModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "o":
		if r, ok := m.selected(); ok {
			openURL(applyURL(r.Posting))
		}
		return m, nil
	case "r":
		if r, ok := m.selected(); ok && r.Posting.Description != "" {
			m.showDescription = !m.showDescription
			m.detail.SetContent(m.renderDetail())
			m.detail.SetYOffset(0)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m browseModel) gotoPage(n int) (tea.Model, tea.Cmd) {
	if m.loading || m.loadPage == nil {
		return m, nil
	}
	m.loading = true
	m.err = ""
	load := m.loadPage
	fetch := func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pageTimeout)
		defer cancel()
		page, err := load(ctx, n)
		return pageLoadedMsg{page: page, err: err}
	}
	return m, tea.Batch(fetch, m.spinner.Tick)
}

func (m *browseModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.page.Results)-1, 0))
	m.recalcContent()

	top := m.cursor * itemHeight
	bottom := top + itemHeight - 1
	if top < m.list.YOffset {
		m.list.SetYOffset(top)
	} else if bottom >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(bottom - m.list.Height + 1)
	}
}

func (m browseModel) selected() (model.MatchResult, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Results) {
		return model.MatchResult{}, false
	}
	return m.page.Results[m.cursor], true
}

func (m browseModel) openDetailView() (tea.Model, tea.Cmd) {
	if _, ok := m.selected(); !ok {
		return m, nil
	}
	m.view = viewDetail
	m.showDescription = false
	m.detail = viewport.New(m.width-4, m.height-4)
	m.detail.SetContent(m.renderDetail())
	return m, nil
}

func (m *browseModel) recalcLayout() {
	// Header (1 line) + border top/bottom (2) + status bar (1).
	width := max(m.width-2, 20)
	height := max(m.height-4, 5)

	if !m.ready {
		m.list = viewport.New(width, height)
		m.ready = true
	} else {
		m.list.Width = width
		m.list.Height = height
	}
	m.recalcContent()
}

func (m *browseModel) recalcContent() {
	offset := (m.pageNum - 1) * max(m.page.Pagination.Limit, 1)
	m.list.SetContent(renderResults(m.page.Results, m.cursor, offset))
}

func (m browseModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m browseModel) viewList() string {
	pg := m.page.Pagination
	header := fmt.Sprintf(" Matches for %s (%d)", m.userID, pg.Total)
	if len(m.page.UserSkillsSample) > 0 {
		header += subtitleStyle.Render("  skills: " + strings.Join(m.page.UserSkillsSample, ", "))
	}

	pane := borderStyle.Width(m.list.Width).Render(m.list.View())

	status := fmt.Sprintf(" page %d/%d    ↑/↓ cursor  n/p page  Enter detail  q quit", m.pageNum, max(pg.Pages, 1))
	if m.loading {
		status = " " + m.spinner.View() + " loading page..."
	} else if m.err != "" {
		status = " " + errorStyle.Render(m.err)
	}

	return headerStyle.Render(header) + "\n" + pane + "\n" + statusBarStyle.Width(m.width).Render(status)
}

func (m browseModel) viewDetail() string {
	title := detailTitleStyle.Render("Job Details")
	content := borderStyle.Width(m.width - 2).Render(m.detail.View())

	status := " o open URL  esc/backspace back  ↑/↓ scroll  q quit"
	if r, ok := m.selected(); ok && r.Posting.Description != "" {
		status = " o open URL  r desc  esc/backspace back  ↑/↓ scroll  q quit"
	}
	return title + "\n" + content + "\n" + statusBarStyle.Width(m.width).Render(status)
}

func (m browseModel) renderDetail() string {
	r, ok := m.selected()
	if !ok {
		return ""
	}
	p := r.Posting
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Title", p.Title)
	addField("Company", p.Company)
	addField("Location", p.Location)
	addField("Salary", p.Salary)
	addField("Type", p.JobType)
	addField("Level", p.ExperienceLevel)
	addField("Source", p.Source)
	b.WriteByte('\n')

	addField("Match", fmt.Sprintf("%d%% (score %d)", r.MatchPercentage, r.MatchScore))
	addField("Matched Skills", strings.Join(r.MatchedSkills, ", "))
	addField("Tags", strings.Join(p.Tags, ", "))
	if !p.PublishedAt.IsZero() {
		addField("Published", p.PublishedAt.Local().Format("2006-01-02 15:04 MST"))
	}
	b.WriteByte('\n')

	addField("Job URL", p.URL)
	if p.ApplicationURL != "" && p.ApplicationURL != p.URL {
		addField("Apply URL", p.ApplicationURL)
	}

	if p.Description != "" {
		wrapWidth := max(m.width-8, 20)
		b.WriteByte('\n')
		if m.showDescription {
			label := "── Job Description "
			fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
			b.WriteString(dividerStyle.Render(label+fill) + "\n\n")
			b.WriteString(bodyStyle.Render(wordWrap(p.Description, wrapWidth)) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press r to read job description") + "\n")
		}
	}

	return b.String()
}

func renderResults(results []model.MatchResult, cursor, offset int) string {
	if len(results) == 0 {
		return "  (no postings cached, run fetch first)"
	}

	var b strings.Builder
	for i, r := range results {
		tSt, sSt, prefix := titleStyle, subtitleStyle, "  "
		if i == cursor {
			tSt, sSt, prefix = selectedTitleStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(fmt.Sprintf("%3d. ", offset+i+1))
		b.WriteString(tSt.Render(r.Posting.Title))
		if r.MatchPercentage > 0 {
			b.WriteString("  " + scoreStyle.Render(fmt.Sprintf("%d%%", r.MatchPercentage)))
		}
		b.WriteByte('\n')

		posted := "n/a"
		if !r.Posting.PublishedAt.IsZero() {
			posted = r.Posting.PublishedAt.Format("2006-01-02")
		}
		b.WriteString(prefix + "     ")
		b.WriteString(sSt.Render(fmt.Sprintf("%s · %s · %s", r.Posting.Company, r.Posting.Location, posted)))
		b.WriteByte('\n')

		if i < len(results)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func applyURL(p model.Posting) string {
	if p.ApplicationURL != "" && p.ApplicationURL != "#" {
		return p.ApplicationURL
	}
	return p.URL
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// openURL opens url in the default system browser, fire-and-forget.
func openURL(url string) {
	if url == "" || url == "#" {
		return
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return
	}
	_ = cmd.Start()
}

// Run shows the first page of matches and lets the user page through the rest.
func Run(userID string, first match.MatchPage, loadPage PageFunc) error {
	m := newBrowseModel(userID, first, loadPage)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

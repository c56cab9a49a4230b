package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"habitline/internal/engine"
	"habitline/internal/habit"
	"habitline/internal/progress"
	"habitline/internal/storage"
)

type boardModel struct {
	ctx context.Context
	svc *engine.Service

	width  int
	height int

	snap      storage.XPState
	instances []habit.Instance
	habits    []habit.Habit

	selected int

	lastLog string
	loading bool
	err     error
}

type loadedMsg struct {
	snap      storage.XPState
	instances []habit.Instance
	habits    []habit.Habit
	err       error
}

type toggledMsg struct {
	ref string
	res *engine.ProgressResult
	err error
}

func newBoardModel(ctx context.Context, svc *engine.Service) boardModel {
	return boardModel{
		ctx:     ctx,
		svc:     svc,
		loading: true,
		lastLog: "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		habits, err := m.svc.Habits(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		now := time.Now()
		instances, err := m.svc.InstancesOn(m.ctx, now, now)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{snap: m.svc.XP().Snapshot(), instances: instances, habits: habits}
	}
}

func (m boardModel) toggleCmd(ref string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.svc.ToggleComplete(m.ctx, ref, time.Now())
		return toggledMsg{ref: ref, res: res, err: err}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.snap = msg.snap
		m.instances = msg.instances
		m.habits = msg.habits
		if m.selected >= len(m.instances) {
			m.selected = len(m.instances) - 1
		}
		if m.selected < 0 {
			m.selected = 0
		}
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case toggledMsg:
		if msg.err != nil {
			m.lastLog = "Toggle failed: " + msg.err.Error()
			return m, nil
		}
		if msg.res.GoalMet {
			m.lastLog = fmt.Sprintf("Completed %s (XP %d, level %d)", msg.res.Habit.Name, msg.res.TotalXP, msg.res.Level)
			if msg.res.LevelUp {
				m.lastLog += " — LEVEL UP!"
			}
		} else {
			m.lastLog = fmt.Sprintf("Reset %s (XP %d, level %d)", msg.res.Habit.Name, msg.res.TotalXP, msg.res.Level)
		}
		return m, m.loadCmd()
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.instances)-1 {
				m.selected++
			}
			return m, nil
		case "c", " ":
			if m.selected < 0 || m.selected >= len(m.instances) {
				return m, nil
			}
			inst := m.instances[m.selected]
			m.lastLog = fmt.Sprintf("Toggling %s…", inst.Name)
			return m, m.toggleCmd(inst.HabitID)
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := m.renderFooter()

	// Simple 2-column layout.
	leftW := 26
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 18 {
			leftW = 18
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.loading {
		return "Habitline — loading…"
	}
	cur, next := m.snap.XPForCurrentLevel, m.snap.XPForNextLevel
	bar := progressBar(m.snap.TotalXP-cur, next-cur, 30)
	return fmt.Sprintf("Habitline | Profile: %s | Level %d | XP %d %s", m.snap.Identity, m.snap.Level, m.snap.TotalXP, bar)
}

func (m boardModel) renderSidebar() string {
	if m.loading {
		return "Today\n\nLoading…"
	}
	now := time.Now()
	ratio := progress.DayCompletionRatio(now, now, m.habits)
	done := 0
	for _, inst := range m.instances {
		if inst.Completed() {
			done++
		}
	}
	lines := []string{"Today"}
	lines = append(lines, fmt.Sprintf("- done %d/%d", done, len(m.instances)))
	lines = append(lines, fmt.Sprintf("- ratio %.0f%%", ratio*100))
	lines = append(lines, fmt.Sprintf("- daily XP %d", m.snap.DailyXP))
	lines = append(lines, "")
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- c/space: toggle")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Today's habits")
	if len(m.instances) == 0 {
		out = append(out, "(nothing scheduled today)")
		return strings.Join(out, "\n")
	}
	for i, inst := range m.instances {
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		mark := "[ ]"
		if inst.Completed() {
			mark = "[x]"
		}
		carried := ""
		if !habit.SameDay(inst.OriginalDate, inst.CurrentDate) {
			carried = " (carried)"
		}
		out = append(out, fmt.Sprintf("%s%s %s %d/%d%s", cursor, mark, inst.Name, inst.Progress, inst.GoalAmount, carried))
	}
	return strings.Join(out, "\n")
}

func (m boardModel) renderFooter() string {
	return "\n" + m.lastLog
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

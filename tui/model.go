package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chhz0/tasklist/core"
	"github.com/chhz0/tasklist/types"
)

type focus int

const (
	focusTitle focus = iota
	focusDescription
	focusStatus
	focusTable
	focusCount
)

// 状态选择器的循环顺序，未设置在最前
var statusCycle = append([]types.Status{types.StatusUnset}, types.Statuses...)

type StatusBar struct {
	Text    string
	IsError bool
}

// snapshotMsg 由 Store 订阅推送，触发重绘
type snapshotMsg core.Snapshot

type Model struct {
	ctx     context.Context
	store   *core.Store
	keys    KeyMap
	updates chan core.Snapshot

	title textinput.Model
	desc  textarea.Model
	focus focus

	snap         core.Snapshot
	row          int
	confirmClear bool
	status       StatusBar
	width        int
	quitting     bool
}

// New 创建界面模型；store 必须已经 Load，res 是 Load 的结果
func New(ctx context.Context, store *core.Store, res core.LoadResult) Model {
	ti := textinput.New()
	ti.Placeholder = "Task title"
	ti.CharLimit = 256
	ti.Width = 60
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Add your task description here."
	ta.SetWidth(60)
	ta.SetHeight(4)
	ta.ShowLineNumbers = false

	m := Model{
		ctx:     ctx,
		store:   store,
		keys:    DefaultKeyMap(),
		updates: make(chan core.Snapshot, 1),
		title:   ti,
		desc:    ta,
		focus:   focusTitle,
		snap:    store.Snapshot(),
	}
	switch {
	case res.Outcome == core.LoadFailed:
		m.status = StatusBar{Text: fmt.Sprintf("could not read saved tasks, starting empty: %v", res.Err), IsError: true}
	case len(m.snap.Tasks) > 0:
		m.status = StatusBar{Text: fmt.Sprintf("loaded %d tasks", len(m.snap.Tasks))}
	}
	m.syncInputs()
	return m
}

// Subscribe 把 Store 的快照转发到界面，返回取消函数
func (m Model) Subscribe() func() {
	return m.store.Subscribe(func(s core.Snapshot) {
		// 只保留最新快照
		for {
			select {
			case m.updates <- s:
				return
			default:
				select {
				case <-m.updates:
				default:
				}
			}
		}
	})
}

func (m Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-m.updates:
			return snapshotMsg(s)
		case <-m.ctx.Done():
			return nil
		}
	}
}

func Run(ctx context.Context, store *core.Store, res core.LoadResult) error {
	m := New(ctx, store, res)
	cancel := m.Subscribe()
	defer cancel()

	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSnapshot())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		// 快照可能晚于同步刷新到达，以 Store 当前状态为准
		m.refresh()
		return m, m.waitForSnapshot()
	case tea.WindowSizeMsg:
		m.width = msg.Width
		w := max(20, min(msg.Width-4, 100))
		m.title.Width = w
		m.desc.SetWidth(w)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}
	if m.confirmClear {
		return m.updateClearConfirm(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextField):
		m.setFocus((m.focus + 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.setFocus((m.focus + focusCount - 1) % focusCount)
		return m, nil
	case key.Matches(msg, m.keys.Save):
		m.save()
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		if m.snap.Editing.Active() {
			m.store.CancelEdit()
			m.refresh()
			m.syncInputs()
			m.status = StatusBar{Text: "edit cancelled"}
		}
		return m, nil
	}

	switch m.focus {
	case focusTitle:
		if msg.Type == tea.KeyEnter {
			m.save()
			return m, nil
		}
		var cmd tea.Cmd
		m.title, cmd = m.title.Update(msg)
		if m.title.Value() != m.snap.Draft.Title {
			m.store.SetTitle(m.title.Value())
			m.refresh()
		}
		return m, cmd
	case focusDescription:
		var cmd tea.Cmd
		m.desc, cmd = m.desc.Update(msg)
		if m.desc.Value() != m.snap.Draft.Description {
			m.store.SetDescription(m.desc.Value())
			m.refresh()
		}
		return m, cmd
	case focusStatus:
		m.updateStatusField(msg)
		return m, nil
	default:
		return m.updateTable(msg)
	}
}

func (m *Model) updateStatusField(msg tea.KeyMsg) {
	idx := 0
	for i, s := range statusCycle {
		if s == m.snap.Draft.Status {
			idx = i
		}
	}
	switch {
	case key.Matches(msg, m.keys.StatusNext):
		idx = (idx + 1) % len(statusCycle)
	case key.Matches(msg, m.keys.StatusPrev):
		idx = (idx + len(statusCycle) - 1) % len(statusCycle)
	case len(msg.String()) == 1 && msg.String()[0] >= '0' && msg.String()[0] <= '3':
		idx = int(msg.String()[0] - '0')
	default:
		return
	}
	m.store.SetStatus(statusCycle[idx])
	m.refresh()
}

func (m Model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q":
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.row > 0 {
			m.row--
		}
	case key.Matches(msg, m.keys.Down):
		if m.row < len(m.snap.Visible)-1 {
			m.row++
		}
	case key.Matches(msg, m.keys.Filter):
		m.cycleFilter()
	case key.Matches(msg, m.keys.ClearAll):
		if len(m.snap.Tasks) > 0 {
			m.confirmClear = true
			m.status = StatusBar{Text: fmt.Sprintf("clear all %d tasks? press y to confirm", len(m.snap.Tasks))}
		}
	case key.Matches(msg, m.keys.Edit):
		entry, ok := m.selected()
		if !ok {
			return m, nil
		}
		if err := m.store.BeginEditByID(entry.Task.ID); err != nil {
			m.status = StatusBar{Text: err.Error(), IsError: true}
			return m, nil
		}
		m.refresh()
		m.syncInputs()
		m.setFocus(focusTitle)
		m.status = StatusBar{Text: fmt.Sprintf("editing %q", entry.Task.Title)}
	case key.Matches(msg, m.keys.Delete):
		entry, ok := m.selected()
		if !ok {
			return m, nil
		}
		err := m.store.RemoveByID(m.ctx, entry.Task.ID)
		m.afterMutation(err, fmt.Sprintf("deleted %q", entry.Task.Title))
	}
	return m, nil
}

func (m Model) updateClearConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmClear = false
	if !key.Matches(msg, m.keys.Confirm) {
		m.status = StatusBar{Text: "clear cancelled"}
		return m, nil
	}
	err := m.store.Clear(m.ctx)
	m.afterMutation(err, "cleared all tasks")
	return m, nil
}

func (m *Model) save() {
	editing := m.snap.Editing.Active()
	err := m.store.Submit(m.ctx)
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		m.status = StatusBar{Text: fmt.Sprintf("%s %s", verr.Field, verr.Reason), IsError: true}
		switch verr.Field {
		case "title":
			m.setFocus(focusTitle)
		case "description":
			m.setFocus(focusDescription)
		}
		return
	}
	done := "task added"
	if editing {
		done = "task updated"
	}
	m.afterMutation(err, done)
	if err == nil || core.IsWarning(err) {
		m.setFocus(focusTitle)
	}
}

// afterMutation 刷新快照和输入框，并把结果写入状态栏
func (m *Model) afterMutation(err error, done string) {
	m.refresh()
	m.syncInputs()
	switch {
	case err == nil:
		m.status = StatusBar{Text: done}
	case core.IsWarning(err):
		cause := err
		var perr *core.PersistError
		if errors.As(err, &perr) {
			cause = perr.Err
		}
		m.status = StatusBar{Text: fmt.Sprintf("%s, but saving to storage failed: %v", done, cause), IsError: true}
	default:
		m.status = StatusBar{Text: err.Error(), IsError: true}
	}
}

func (m *Model) cycleFilter() {
	criteria := types.Criteria()
	idx := 0
	for i, c := range criteria {
		if c == m.snap.Filter {
			idx = i
		}
	}
	m.store.SetFilter(criteria[(idx+1)%len(criteria)])
	m.refresh()
	m.row = 0
}

func (m *Model) refresh() {
	m.snap = m.store.Snapshot()
	m.clampRow()
}

func (m *Model) clampRow() {
	if m.row >= len(m.snap.Visible) {
		m.row = len(m.snap.Visible) - 1
	}
	if m.row < 0 {
		m.row = 0
	}
}

func (m *Model) syncInputs() {
	if m.title.Value() != m.snap.Draft.Title {
		m.title.SetValue(m.snap.Draft.Title)
	}
	if m.desc.Value() != m.snap.Draft.Description {
		m.desc.SetValue(m.snap.Draft.Description)
	}
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	m.title.Blur()
	m.desc.Blur()
	switch f {
	case focusTitle:
		m.title.Focus()
	case focusDescription:
		m.desc.Focus()
	}
}

func (m Model) selected() (core.Entry, bool) {
	if m.row < 0 || m.row >= len(m.snap.Visible) {
		return core.Entry{}, false
	}
	return m.snap.Visible[m.row], true
}

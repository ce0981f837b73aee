package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pwsw/pwsw/internal/ipc"
)

var (
	tuiHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	tuiDimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	tuiCurrentMark = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

type tuiRefreshMsg struct{}

type tuiDataMsg struct {
	status ipc.StatusPayload
	sinks  ipc.SinksPayload
	wins   ipc.WindowsPayload
	err    error
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open a read-only status dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode = 1
			p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return err
			}
			exitCode = 0
			return nil
		},
	}
}

func newTUIModel() *tuiDashboard {
	return &tuiDashboard{width: 100, height: 30}
}

// tuiDashboard is the bubbletea model. It keeps the last successfully
// fetched snapshot alongside the error from the most recent fetch.
type tuiDashboard struct {
	width, height int

	status  ipc.StatusPayload
	sinks   ipc.SinksPayload
	windows ipc.WindowsPayload
	lastErr error
	fetched bool
}

func (m *tuiDashboard) Init() tea.Cmd {
	return tea.Batch(fetchTUIData, tuiTick())
}

func tuiTick() tea.Cmd {
	return tea.Tick(2*time.Second, func(time.Time) tea.Msg {
		return tuiRefreshMsg{}
	})
}

func fetchTUIData() tea.Msg {
	msg := tuiDataMsg{}

	resp, err := call(ipc.Request{Kind: ipc.KindStatus})
	if err != nil {
		msg.err = err
		return msg
	}
	if err := ipc.DecodeData(resp, &msg.status); err != nil {
		msg.err = err
		return msg
	}

	resp, err = call(ipc.Request{Kind: ipc.KindListSinks})
	if err != nil {
		msg.err = err
		return msg
	}
	if err := ipc.DecodeData(resp, &msg.sinks); err != nil {
		msg.err = err
		return msg
	}

	resp, err = call(ipc.Request{Kind: ipc.KindListWindows})
	if err != nil {
		msg.err = err
		return msg
	}
	if err := ipc.DecodeData(resp, &msg.wins); err != nil {
		msg.err = err
		return msg
	}

	return msg
}

func (m *tuiDashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			return m, fetchTUIData
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tuiRefreshMsg:
		return m, tea.Batch(fetchTUIData, tuiTick())

	case tuiDataMsg:
		m.fetched = true
		m.lastErr = msg.err
		if msg.err == nil {
			m.status = msg.status
			m.sinks = msg.sinks
			m.windows = msg.wins
		}
		return m, nil
	}

	return m, nil
}

func (m *tuiDashboard) View() string {
	var b strings.Builder

	b.WriteString(tuiHeaderStyle.Render("pwsw status"))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(m.width, 72)))
	b.WriteString("\n\n")

	if !m.fetched {
		b.WriteString("connecting to daemon...\n")
		return b.String()
	}
	if m.lastErr != nil {
		b.WriteString(fmt.Sprintf("error: %v\n", m.lastErr))
		b.WriteString(tuiDimStyle.Render("\nretrying every 2s, press q to quit\n"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("current sink: %s\n", m.status.CurrentSink))
	b.WriteString(fmt.Sprintf("default sink: %s\n", m.status.DefaultSink))
	b.WriteString(fmt.Sprintf("match policy: %s\n", matchPolicyLabel(m.status.MatchByIndex)))
	b.WriteString(fmt.Sprintf("smart toggle: %v\n\n", m.status.SmartToggle))

	b.WriteString(tuiHeaderStyle.Render("sinks"))
	b.WriteString("\n")
	for _, s := range m.sinks.Sinks {
		mark := " "
		if s.Name == m.status.CurrentSink {
			mark = tuiCurrentMark.Render("►")
		}
		avail := tuiDimStyle.Render("unavailable")
		if s.IsAvailable {
			avail = "available"
		}
		b.WriteString(fmt.Sprintf("%s %-28s %s\n", mark, s.Name, avail))
	}

	b.WriteString("\n")
	b.WriteString(tuiHeaderStyle.Render("focused windows"))
	b.WriteString("\n")
	if len(m.windows.Windows) == 0 {
		b.WriteString(tuiDimStyle.Render("none tracked\n"))
	}
	for _, w := range m.windows.Windows {
		mark := tuiDimStyle.Render("no match")
		if w.Matched {
			mark = fmt.Sprintf("-> %s", w.SinkRef)
		}
		b.WriteString(fmt.Sprintf("app_id=%-20s title=%-30q %s\n", w.AppID, w.Title, mark))
	}

	b.WriteString("\n")
	b.WriteString(tuiDimStyle.Render("q: quit  r: refresh now"))
	b.WriteString("\n")
	return b.String()
}

package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"semivibe.dev/driver"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 1).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)
)

type pollResult struct {
	status    driver.Status
	sensors   driver.Sensors
	actuators driver.Actuators
	err       error
}

type model struct {
	drv      *driver.Driver
	interval time.Duration
	last     pollResult
	ticks    int
}

func newModel(drv *driver.Driver, interval time.Duration) model {
	return model{drv: drv, interval: interval}
}

func (m model) Init() tea.Cmd {
	return m.poll()
}

func (m model) poll() tea.Cmd {
	return func() tea.Msg {
		var r pollResult
		r.status, r.err = m.drv.GetStatus()
		if r.err == nil {
			r.sensors, r.err = m.drv.GetSensors()
		}
		if r.err == nil {
			r.actuators, r.err = m.drv.GetActuators()
		}
		return r
	}
}

type tickMsg time.Time

func (m model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case pollResult:
		m.last = msg
		m.ticks++
		return m, m.tick()
	case tickMsg:
		return m, m.poll()
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("semivibe-monitor") + "\n\n")

	if m.last.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.last.err)) + "\n")
		return b.String()
	}

	s := m.last.status
	sn := m.last.sensors
	a := m.last.actuators

	fmt.Fprintf(&b, "%s %08b\n", labelStyle.Render("connected_device"), s.ConnectedDevice)
	fmt.Fprintf(&b, "%s %08b\n", labelStyle.Render("power_state     "), s.PowerState)
	fmt.Fprintf(&b, "%s %08b\n", labelStyle.Render("error_state     "), s.ErrorState)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %3d\n", labelStyle.Render("temperature     "), sn.TempValue)
	fmt.Fprintf(&b, "%s %3d\n", labelStyle.Render("humidity        "), sn.HumidVal)
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %3d\n", labelStyle.Render("led             "), a.LED)
	fmt.Fprintf(&b, "%s %3d\n", labelStyle.Render("fan             "), a.Fan)
	fmt.Fprintf(&b, "%s %3d\n", labelStyle.Render("heater          "), a.Heater)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("press q to quit") + "\n")
	return b.String()
}

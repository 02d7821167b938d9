package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/robocore/internal/storage"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ff88"))

	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

func printSummary(run storage.Run, elapsed time.Duration) {
	m := run.Meta
	rows := [][2]string{
		{"robot", m.Robot},
		{"controller", m.Controller},
		{"learner", m.Learner},
		{"sim time", fmt.Sprintf("%.2fs in %v", m.Duration, elapsed.Round(time.Millisecond))},
		{"steps", fmt.Sprint(m.Steps)},
		{"cycles", fmt.Sprint(m.Cycles)},
		{"final pose", fmt.Sprintf("x=%.3f y=%.3f yaw=%.3f", m.FinalPose.X, m.FinalPose.Y, m.FinalPose.Yaw)},
	}
	if len(run.Evaluations) > 0 {
		rows = append(rows,
			[2]string{"evaluations", fmt.Sprint(len(run.Evaluations))},
			[2]string{"best fitness", fmt.Sprintf("%.6f", m.BestFitness)})
	}
	if v, ok := m.Metrics["control_effort"]; ok {
		rows = append(rows, [2]string{"control effort", fmt.Sprintf("%.4f", v)})
	}
	if m.ID != "" {
		rows = append(rows, [2]string{"run id", m.ID})
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("run complete"))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(labelStyle.Width(16).Render(r[0]))
		b.WriteString(valueStyle.Render(r[1]))
	}
	fmt.Println(boxStyle.Render(b.String()))
}

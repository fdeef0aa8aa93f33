package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Shivanand-hulikatti/eventmaster/internal/service"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	soldOutStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("160"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	detailStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	noticeStyles = map[service.NoticeKind]lipgloss.Style{
		service.NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		service.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		service.NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	}
)

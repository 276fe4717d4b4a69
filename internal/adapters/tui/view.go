package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/rclctl/internal/application"
)

var (
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	tabStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("39")).Underline(true)
	modalStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 1)
	helpStyle      = lipgloss.NewStyle().Faint(true)
	toastStyles    = map[toastLevel]lipgloss.Style{
		toastInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		toastSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		toastError:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
	}
)

func (s *Shell) View() string {
	if !s.isOpen {
		lines := []string{bannerStyle.Render("rclctl dashboard: ctrl+k to open, q to quit")}
		if s.toast != "" {
			lines = append(lines, toastStyles[s.toastLevel].Render(s.toast))
		}
		return strings.Join(lines, "\n")
	}

	sections := []string{s.tabBar(), "", s.body()}
	if modal := s.modalView(); modal != "" {
		sections = append(sections, "", modal)
	}
	if s.toast != "" {
		sections = append(sections, "", toastStyles[s.toastLevel].Render(s.toast))
	}
	sections = append(sections, "", helpStyle.Render(s.help()))
	return strings.Join(sections, "\n")
}

func (s *Shell) tabBar() string {
	tabs := make([]string, 0, len(s.panels))
	for i, panel := range s.panels {
		label := fmt.Sprintf("%d %s", i+1, panel.Title())
		if i == s.currentTab {
			tabs = append(tabs, activeTabStyle.Render(label))
			continue
		}
		tabs = append(tabs, tabStyle.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (s *Shell) body() string {
	name := s.CurrentTab()
	if name == "" {
		return "No panels configured."
	}

	view, loaded := s.views[name]
	if s.loading[name] && !loaded {
		return s.spinner.View() + " Loading..."
	}

	var out string
	switch {
	case !loaded:
		out = s.renderer.View(nil)
	case name == application.PanelRestraints && s.session != nil && s.session.Loaded():
		if errView, isErr := view.(application.ErrorView); isErr {
			out = s.renderer.View(errView)
			break
		}
		out = s.renderer.Matrix(s.session.Snapshot(), s.cursor)
		if restraints, ok := view.(application.RestraintsView); ok {
			out += "\n\n" + s.renderer.AuditTrail(restraints.Audit)
		}
	default:
		out = s.renderer.View(view)
	}

	if s.loading[name] {
		out = s.spinner.View() + " Refreshing...\n" + out
	}
	if s.saving {
		out = s.spinner.View() + " Saving...\n" + out
	}
	return out
}

func (s *Shell) modalView() string {
	switch s.modal {
	case modalAuthorize:
		return modalStyle.Render(s.authPrompt + "\nEnter the authorization key:\n" + s.input.View())
	case modalConfirmRepay:
		view, _ := s.views[application.PanelDebt].(application.DebtView)
		return modalStyle.Render(fmt.Sprintf("Repay all %d debt item(s)? [y/n]", len(view.Summary.Items)))
	case modalMemoryQuery:
		return modalStyle.Render("Query eigenmemory:\n" + s.input.View())
	case modalForget:
		return modalStyle.Render("Forget every memory about subject:\n" + s.input.View())
	case modalIQL:
		return modalStyle.Render("Run IQL query:\n" + s.input.View())
	}
	return ""
}

func (s *Shell) help() string {
	common := "tab/1-9 switch • r reload • esc close • q quit"
	switch s.CurrentTab() {
	case application.PanelRestraints:
		return "↑↓ select • ←→ adjust • s save • u reset • a authorize • " + common
	case application.PanelDebt:
		return "R repay all • " + common
	case application.PanelNarrative:
		return "c consolidate • " + common
	case application.PanelHobby:
		return "s start • x stop • " + common
	case application.PanelMemory:
		return "/ query • f forget • " + common
	case application.PanelIQL:
		return "/ query • " + common
	}
	return common
}

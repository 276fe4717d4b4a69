package panels

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

const defaultMarkdownStyle = "dark"

type Options struct {
	Now   time.Time
	Width int
	// MarkdownStyle names a glamour standard style; empty means dark.
	MarkdownStyle string
}

// Renderer turns view models into terminal text. It is pure: the same view
// and options always produce the same output.
type Renderer struct {
	opts     Options
	styles   styles
	markdown *glamour.TermRenderer
}

func NewRenderer(opts Options) *Renderer {
	if opts.MarkdownStyle == "" {
		opts.MarkdownStyle = defaultMarkdownStyle
	}
	r := &Renderer{opts: opts, styles: newStyles()}

	mdOpts := []glamour.TermRendererOption{glamour.WithStandardStyle(opts.MarkdownStyle)}
	if opts.Width > 0 {
		mdOpts = append(mdOpts, glamour.WithWordWrap(opts.Width))
	}
	if md, err := glamour.NewTermRenderer(mdOpts...); err == nil {
		r.markdown = md
	}
	return r
}

func (r *Renderer) View(view application.View) string {
	switch v := view.(type) {
	case application.RestraintsView:
		return r.restraints(v)
	case application.CouncilView:
		return r.council(v)
	case application.DebtView:
		return r.debt(v)
	case application.NarrativeView:
		return r.narrative(v)
	case application.MemoryView:
		return r.memory(v)
	case application.IQLView:
		return r.iql(v)
	case application.HobbyView:
		return r.hobby(v)
	case application.SecurityView:
		return r.security(v)
	case application.ObservabilityView:
		return r.observability(v)
	case application.ErrorView:
		return r.Error(v)
	case nil:
		return r.styles.empty.Render("Nothing loaded yet.")
	default:
		return r.styles.empty.Render(fmt.Sprintf("No renderer for %s.", view.PanelName()))
	}
}

// Error is the uniform failure card: icon, message, underlying error text.
func (r *Renderer) Error(view application.ErrorView) string {
	s := r.styles
	body := lipgloss.JoinVertical(lipgloss.Left,
		s.errorMessage.Render("✗ "+view.Message),
		s.detail.Render(view.Err),
		s.meta.Render("Switch back to this tab or press r to retry."),
	)
	return s.errorBox.Render(body)
}

func (r *Renderer) renderMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if text == "" || r.markdown == nil {
		return text
	}
	out, err := r.markdown.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}

func (r *Renderer) council(view application.CouncilView) string {
	s := r.styles
	lines := []string{
		s.title.Render("Council"),
		s.header.Render(fmt.Sprintf("members: %d", len(view.Members))),
	}
	for _, m := range view.Members {
		status := s.ok.Render("active")
		if !m.Active {
			status = s.locked.Render("inactive")
		}
		name := m.Role
		if m.Name != "" {
			name = fmt.Sprintf("%s (%s)", m.Name, m.Role)
		}
		line := fmt.Sprintf("%s %s weight %.2f", s.label.Render(name), status, m.Weight)
		if m.Focus != "" {
			line += " " + s.meta.Render(m.Focus)
		}
		lines = append(lines, line)
	}

	lines = append(lines, s.section.Render(s.title.Render("Recent deliberations")))
	if len(view.Deliberations) == 0 {
		lines = append(lines, s.empty.Render("No deliberations yet."))
	}
	for _, d := range view.Deliberations {
		lines = append(lines, r.deliberation(d))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Deliberation renders one council verdict with every perspective.
func (r *Renderer) Deliberation(d domain.Deliberation) string {
	s := r.styles
	lines := []string{r.deliberation(d)}
	for _, p := range d.Perspectives {
		line := fmt.Sprintf("  %s: %s (%s)", s.label.Render(p.Role), decisionText(p.Vote, s), formatPercent(p.Confidence))
		if p.Reasoning != "" {
			line += " " + s.detail.Render(truncate(p.Reasoning, 120))
		}
		lines = append(lines, line)
		for _, concern := range p.Concerns {
			lines = append(lines, s.meta.Render("    - "+concern))
		}
	}
	for _, c := range d.Conflicts {
		lines = append(lines, s.warning.Render(fmt.Sprintf("  conflict %s vs %s: %s", c.Roles[0], c.Roles[1], c.Issue)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) deliberation(d domain.Deliberation) string {
	s := r.styles
	unanimity := "split"
	if d.Unanimous {
		unanimity = "unanimous"
	}
	title := d.Description
	if title == "" {
		title = d.ID
	}
	line := fmt.Sprintf("%s %s %s", decisionText(d.Decision, s), s.detail.Render(truncate(title, 80)), s.meta.Render(unanimity))
	if len(d.Conflicts) > 0 {
		line += " " + s.warning.Render(fmt.Sprintf("%d conflict(s)", len(d.Conflicts)))
	}
	return line
}

func decisionText(decision domain.Decision, s styles) string {
	text := strings.ToUpper(string(decision))
	if text == "" {
		text = "UNKNOWN"
	}
	switch decision {
	case domain.DecisionApprove:
		return s.ok.Render(text)
	case domain.DecisionReject:
		return s.danger.Render(text)
	default:
		return s.warning.Render(text)
	}
}

func (r *Renderer) debt(view application.DebtView) string {
	s := r.styles
	counts := view.Summary.CountByPriority()
	lines := []string{
		s.title.Render("Cognitive Debt"),
		s.header.Render(fmt.Sprintf("outstanding: %.2f  items: %d (high %d, medium %d, low %d)",
			view.Summary.Outstanding, len(view.Summary.Items),
			counts[domain.PriorityHigh], counts[domain.PriorityMedium], counts[domain.PriorityLow])),
	}
	if len(view.Summary.Items) == 0 {
		lines = append(lines, s.ok.Render("No outstanding debt."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, item := range view.Summary.Ordered() {
		lines = append(lines, fmt.Sprintf("%s %s %s %s",
			priorityText(item.Priority, s),
			s.label.Render(item.DecisionID),
			s.detail.Render(truncate(item.Reason, 80)),
			s.meta.Render(formatRelative(item.LoggedAt, r.opts.Now)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func priorityText(p domain.Priority, s styles) string {
	text := fmt.Sprintf("%-6s", strings.ToUpper(string(p)))
	switch p {
	case domain.PriorityHigh:
		return s.danger.Render(text)
	case domain.PriorityMedium:
		return s.warning.Render(text)
	default:
		return s.meta.Render(text)
	}
}

func (r *Renderer) narrative(view application.NarrativeView) string {
	s := r.styles
	lines := []string{
		s.title.Render("Narrative"),
		s.header.Render(fmt.Sprintf("events: %d  updated %s", view.Summary.EventCount, formatRelative(view.Summary.LastUpdated, r.opts.Now))),
	}
	if summary := r.renderMarkdown(view.Summary.Summary); summary != "" {
		lines = append(lines, summary)
	} else {
		lines = append(lines, s.empty.Render("No narrative summary yet."))
	}
	if len(view.Summary.Themes) > 0 {
		lines = append(lines, s.meta.Render("themes: "+strings.Join(view.Summary.Themes, ", ")))
	}

	lines = append(lines, s.section.Render(r.consolidation(view.Consolidation)))

	if len(view.Events) > 0 {
		lines = append(lines, s.section.Render(s.title.Render("Recent events")))
	}
	for _, e := range view.Events {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			s.label.Render(e.Kind),
			s.detail.Render(truncate(e.Description, 90)),
			s.meta.Render(formatRelative(e.Timestamp, r.opts.Now)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) consolidation(status domain.ConsolidationStatus) string {
	s := r.styles
	state := s.meta.Render("idle")
	if status.Running {
		state = s.warning.Render("running")
	}
	line := fmt.Sprintf("%s %s  pending events: %d  runs: %d  last run %s",
		s.title.Render("Consolidation"), state, status.PendingEvents, status.Consolidations,
		formatRelative(status.LastRun, r.opts.Now))
	if status.Message != "" {
		line += "\n" + s.detail.Render(status.Message)
	}
	return line
}

// Consolidation renders a trigger acknowledgement.
func (r *Renderer) Consolidation(status domain.ConsolidationStatus) string {
	return r.consolidation(status)
}

func (r *Renderer) memory(view application.MemoryView) string {
	s := r.styles
	lines := []string{
		s.title.Render("Eigenmemory"),
		s.header.Render(fmt.Sprintf("memories: %d  dimensions: %d  subjects: %d  compression: %.2f",
			view.Stats.TotalMemories, view.Stats.Dimensions, view.Stats.Subjects, view.Stats.Compression)),
	}
	keys := make([]string, 0, len(view.Stats.Extra))
	for key := range view.Stats.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, s.meta.Render(fmt.Sprintf("%s: %v", key, view.Stats.Extra[key])))
	}

	if view.LastQuery != nil {
		lines = append(lines, s.section.Render(r.MemoryQuery(*view.LastQuery)))
	}
	if view.LastForget != nil {
		lines = append(lines, s.section.Render(r.Forget(*view.LastForget)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) MemoryQuery(result domain.MemoryQueryResult) string {
	s := r.styles
	lines := []string{s.title.Render(fmt.Sprintf("Query %q (%s): %d match(es)", result.Query, result.Type, len(result.Matches)))}
	for _, m := range result.Matches {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			s.meta.Render(fmt.Sprintf("%.2f", m.Score)),
			s.label.Render(m.Subject),
			s.detail.Render(truncate(m.Content, 90)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) Forget(result domain.ForgetResult) string {
	s := r.styles
	if result.ConfirmationRequired {
		text := fmt.Sprintf("Forgetting %q needs confirmation.", result.Subject)
		if result.Message != "" {
			text += " " + result.Message
		}
		return s.warning.Render(text)
	}
	text := fmt.Sprintf("Forgot %d memor%s about %q.", result.Forgotten, plural(result.Forgotten, "y", "ies"), result.Subject)
	if result.Message != "" {
		text += " " + result.Message
	}
	return s.ok.Render(text)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func (r *Renderer) iql(view application.IQLView) string {
	s := r.styles
	lines := []string{s.title.Render("IQL")}
	if view.LastResult != nil {
		lines = append(lines, r.IQLResult(*view.LastResult))
	}

	if len(view.Examples) == 0 {
		lines = append(lines, s.section.Render(s.empty.Render("No example queries.")))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	var md strings.Builder
	md.WriteString("## Examples\n\n")
	for _, e := range view.Examples {
		fmt.Fprintf(&md, "**%s**", e.Name)
		if e.Description != "" {
			fmt.Fprintf(&md, ": %s", e.Description)
		}
		fmt.Fprintf(&md, "\n\n```\n%s\n```\n\n", e.Query)
	}
	lines = append(lines, s.section.Render(r.renderMarkdown(md.String())))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) IQLResult(result domain.IQLResult) string {
	s := r.styles
	status := s.ok.Render(result.Status)
	if !result.OK() {
		status = s.danger.Render(result.Status)
	}
	constraints := s.ok.Render("constraints satisfied")
	if !result.ConstraintsSatisfied {
		constraints = s.warning.Render("constraints not satisfied")
	}
	lines := []string{
		fmt.Sprintf("%s %s %s %s", s.label.Render("query"), s.detail.Render(result.Query), status,
			s.meta.Render(fmt.Sprintf("%.1f ms", result.ExecutionTimeMS))),
		constraints,
	}

	keys := make([]string, 0, len(result.Fields))
	for key := range result.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("  %s = %v", s.label.Render(key), result.Fields[key]))
	}
	for _, e := range result.Errors {
		lines = append(lines, s.danger.Render("  error: "+e))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) hobby(view application.HobbyView) string {
	s := r.styles
	state := s.meta.Render("stopped")
	if view.Status.Running {
		state = s.ok.Render("running")
	}
	header := fmt.Sprintf("state: %s  activities today: %d", state, view.Status.ActivitiesToday)
	if view.Status.CurrentActivity != "" {
		header += "  now: " + view.Status.CurrentActivity
	}
	lines := []string{s.title.Render("Hobby"), header}
	if view.Status.Message != "" {
		lines = append(lines, s.detail.Render(view.Status.Message))
	}

	cfg := fmt.Sprintf("config: %s every %s", onOff(view.Config.Enabled, s), view.Config.Interval)
	if len(view.Config.Topics) > 0 {
		cfg += "  topics: " + strings.Join(view.Config.Topics, ", ")
	}
	lines = append(lines, s.meta.Render(cfg))

	lines = append(lines, s.section.Render(s.title.Render("Activities")))
	if len(view.Activities) == 0 {
		lines = append(lines, s.empty.Render("No activities yet."))
	}
	for _, a := range view.Activities {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			s.label.Render(a.Kind),
			s.detail.Render(truncate(a.Summary, 80)),
			s.meta.Render(fmt.Sprintf("%s, %s", a.Duration, formatRelative(a.Timestamp, r.opts.Now))),
		))
	}

	lines = append(lines, s.section.Render(s.title.Render("Insights")))
	if len(view.Insights) == 0 {
		lines = append(lines, s.empty.Render("No insights yet."))
	}
	for _, i := range view.Insights {
		lines = append(lines, fmt.Sprintf("%s %s %s",
			s.label.Render(i.Topic),
			s.detail.Render(truncate(i.Insight, 90)),
			s.meta.Render(formatPercent(i.Confidence)),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) security(view application.SecurityView) string {
	s := r.styles
	status := s.ok.Render(view.Status.Status)
	if !view.Status.AllEnabled() {
		status = s.warning.Render(view.Status.Status)
	}
	lines := []string{
		s.title.Render("Security"),
		"status: " + status,
	}
	for _, p := range []struct {
		name   string
		status domain.ProtectionStatus
	}{
		{"API key protection", view.Status.APIKeyProtection},
		{"Skill scanning", view.Status.SkillScanning},
		{"Container protection", view.Status.ContainerProtection},
	} {
		line := fmt.Sprintf("%-22s %s", p.name, onOff(p.status.Enabled, s))
		if p.status.Detail != "" {
			line += " " + s.meta.Render(p.status.Detail)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) observability(view application.ObservabilityView) string {
	s := r.styles
	st := view.State
	lines := []string{
		s.title.Render("Observability"),
		fmt.Sprintf("%s calls %d  avg %.1f ms", s.label.Render("System 1"), st.System1.Calls, st.System1.AverageMS()),
		fmt.Sprintf("%s calls %d  avg %.1f ms", s.label.Render("System 2"), st.System2.Calls, st.System2.AverageMS()),
		fmt.Sprintf("escalations %d (%s of system 1 calls)", st.Escalations, formatPercent(st.EscalationRate())),
	}

	lines = append(lines, s.section.Render(s.title.Render("Recent decisions")))
	if len(view.Decisions) == 0 {
		lines = append(lines, s.empty.Render("No decisions recorded."))
	}
	for _, d := range view.Decisions {
		lines = append(lines, r.decision(d))
	}

	lines = append(lines, s.section.Render(r.auditTrail(view.Audit)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (r *Renderer) decision(d domain.DecisionRecord) string {
	s := r.styles
	return fmt.Sprintf("%s %s %s %s %s",
		s.label.Render(d.ID),
		s.detail.Render(d.Type),
		s.meta.Render(d.System),
		s.detail.Render(d.Outcome),
		s.meta.Render(fmt.Sprintf("%s, %s", formatPercent(d.Confidence), formatRelative(d.Timestamp, r.opts.Now))),
	)
}

// Decisions renders a standalone decision list.
func (r *Renderer) Decisions(records []domain.DecisionRecord) string {
	s := r.styles
	lines := []string{s.title.Render("Decisions"), s.header.Render(fmt.Sprintf("count: %d", len(records)))}
	for _, d := range records {
		lines = append(lines, r.decision(d))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// AuditTrail renders a standalone audit trail.
func (r *Renderer) AuditTrail(trail domain.AuditTrail) string {
	return r.auditTrail(trail)
}

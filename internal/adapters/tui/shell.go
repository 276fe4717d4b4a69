package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/bnema/rclctl/internal/adapters/render/panels"
	"github.com/bnema/rclctl/internal/application"
	"github.com/bnema/rclctl/internal/domain"
)

const defaultToastDuration = 4 * time.Second

type modalKind int

const (
	modalNone modalKind = iota
	modalAuthorize
	modalConfirmRepay
	modalMemoryQuery
	modalForget
	modalIQL
)

type Config struct {
	Context  context.Context
	Panels   []application.Panel
	Session  *application.RestraintSession
	Debt     *application.DebtService
	Service  *application.Service
	Renderer *panels.Renderer
	Logger   *zap.Logger
	// ToastDuration is how long a status message stays visible.
	ToastDuration time.Duration
	StartOpen     bool
}

// Shell is the dashboard. It is either collapsed to a one-line banner or
// open on exactly one tab; switching to a tab always reloads it.
type Shell struct {
	ctx         context.Context
	panels      []application.Panel
	registry    *application.Registry
	dispatcher  *application.Dispatcher
	generations *application.Generations
	session     *application.RestraintSession
	debt        *application.DebtService
	service     *application.Service
	renderer    *panels.Renderer
	logger      *zap.Logger
	keys        keyMap

	isOpen     bool
	registered bool
	startOpen  bool
	currentTab int
	views      map[string]application.View
	loading    map[string]bool
	reloads    []string

	cursor  int
	modal   modalKind
	input   textinput.Model
	spinner spinner.Model
	saving  bool

	// authPrompt and afterAuth describe what the authorization modal is
	// for; afterAuth runs once the key is captured.
	authPrompt string
	afterAuth  func() tea.Cmd

	toast         string
	toastLevel    toastLevel
	toastSeq      int
	toastDuration time.Duration

	width  int
	height int
}

func NewShell(cfg Config) *Shell {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = panels.NewRenderer(panels.Options{})
	}
	toastDuration := cfg.ToastDuration
	if toastDuration <= 0 {
		toastDuration = defaultToastDuration
	}

	input := textinput.New()
	input.CharLimit = 512

	s := &Shell{
		ctx:           ctx,
		panels:        cfg.Panels,
		registry:      application.NewRegistry(),
		generations:   application.NewGenerations(),
		session:       cfg.Session,
		debt:          cfg.Debt,
		service:       cfg.Service,
		renderer:      renderer,
		logger:        logger,
		keys:          defaultKeyMap(),
		startOpen:     cfg.StartOpen,
		views:         map[string]application.View{},
		loading:       map[string]bool{},
		input:         input,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		toastDuration: toastDuration,
	}
	s.dispatcher = application.NewDispatcher(s.registry, func(panel string) {
		s.reloads = append(s.reloads, panel)
	}, logger)
	return s
}

func (s *Shell) Init() tea.Cmd {
	cmds := []tea.Cmd{s.spinner.Tick}
	if s.startOpen {
		cmds = append(cmds, s.Open())
	}
	return tea.Batch(cmds...)
}

func (s *Shell) IsOpen() bool {
	return s.isOpen
}

func (s *Shell) CurrentTab() string {
	if len(s.panels) == 0 {
		return ""
	}
	return s.panels[s.currentTab].Name()
}

// Open is a no-op when already open. The first open registers every panel.
func (s *Shell) Open() tea.Cmd {
	if s.isOpen {
		return nil
	}
	s.isOpen = true
	if !s.registered {
		for _, panel := range s.panels {
			s.registry.Register(panel)
		}
		s.registered = true
	}
	return s.loadCurrent()
}

// Close is a no-op when already closed.
func (s *Shell) Close() {
	if !s.isOpen {
		return
	}
	s.isOpen = false
	s.modal = modalNone
	s.input.Blur()
}

func (s *Shell) Toggle() tea.Cmd {
	if s.isOpen {
		s.Close()
		return nil
	}
	return s.Open()
}

// SwitchTab always reloads the target, including the tab already shown.
func (s *Shell) SwitchTab(index int) tea.Cmd {
	if index < 0 || index >= len(s.panels) {
		return nil
	}
	s.currentTab = index
	s.cursor = 0
	return s.loadCurrent()
}

func (s *Shell) loadCurrent() tea.Cmd {
	if len(s.panels) == 0 {
		return nil
	}
	return s.load(s.panels[s.currentTab])
}

func (s *Shell) panel(name string) (application.Panel, bool) {
	for _, p := range s.panels {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

func (s *Shell) load(panel application.Panel) tea.Cmd {
	name := panel.Name()
	gen := s.generations.Next(name)
	s.loading[name] = true
	ctx := s.ctx

	return func() tea.Msg {
		view, err := panel.Load(ctx)
		return panelLoadedMsg{panel: name, gen: gen, view: view, err: err}
	}
}

func (s *Shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = msg.Width, msg.Height
		return s, nil
	case tea.KeyMsg:
		return s, s.handleKey(msg)
	case panelLoadedMsg:
		s.handleLoaded(msg)
		return s, nil
	case EventMsg:
		return s, s.handleEvent(msg)
	case saveDoneMsg:
		return s, s.handleSaved(msg)
	case repayDoneMsg:
		return s, s.handleRepaid(msg)
	case actionDoneMsg:
		return s, s.handleAction(msg)
	case toastExpiredMsg:
		if msg.seq == s.toastSeq {
			s.toast = ""
		}
		return s, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Shell) handleLoaded(msg panelLoadedMsg) {
	if !s.generations.Current(msg.panel, msg.gen) {
		s.logger.Debug("discarding superseded panel load",
			zap.String("panel", msg.panel),
			zap.Uint64("generation", msg.gen))
		return
	}
	s.loading[msg.panel] = false

	if msg.err != nil {
		s.logger.Error("panel load failed", zap.String("panel", msg.panel), zap.Error(msg.err))
		if panel, ok := s.panel(msg.panel); ok {
			s.views[msg.panel] = application.NewErrorView(panel, msg.err)
		}
		return
	}

	if restraints, ok := msg.view.(application.RestraintsView); ok && s.session != nil {
		s.session.Apply(restraints.Set)
	}
	s.views[msg.panel] = msg.view
}

func (s *Shell) handleEvent(msg EventMsg) tea.Cmd {
	s.reloads = s.reloads[:0]
	s.dispatcher.Handle(msg.Event)

	var cmds []tea.Cmd
	for _, name := range s.reloads {
		if panel, ok := s.panel(name); ok {
			cmds = append(cmds, s.load(panel))
		}
	}
	return tea.Batch(cmds...)
}

func (s *Shell) handleKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	if s.modal != modalNone {
		return s.handleModalKey(msg)
	}

	switch {
	case key.Matches(msg, s.keys.Toggle):
		return s.Toggle()
	case !s.isOpen:
		if key.Matches(msg, s.keys.Quit) {
			return tea.Quit
		}
		return nil
	case key.Matches(msg, s.keys.Close):
		s.Close()
		return nil
	case key.Matches(msg, s.keys.Quit):
		return tea.Quit
	case key.Matches(msg, s.keys.NextTab):
		return s.SwitchTab((s.currentTab + 1) % max(len(s.panels), 1))
	case key.Matches(msg, s.keys.PrevTab):
		return s.SwitchTab((s.currentTab - 1 + len(s.panels)) % max(len(s.panels), 1))
	case key.Matches(msg, s.keys.Reload):
		return s.loadCurrent()
	}
	if index, ok := tabIndex(msg.String()); ok {
		return s.SwitchTab(index)
	}

	switch s.CurrentTab() {
	case application.PanelRestraints:
		return s.handleRestraintKey(msg)
	case application.PanelDebt:
		return s.handleDebtKey(msg)
	case application.PanelNarrative:
		if key.Matches(msg, s.keys.Consolidate) {
			return s.runAction(application.PanelNarrative, func(ctx context.Context) (string, func(), error) {
				status, err := s.service.Consolidate(ctx)
				if err != nil {
					return "", nil, err
				}
				return firstNonEmpty(status.Message, "Consolidation triggered."), nil, nil
			})
		}
	case application.PanelHobby:
		return s.handleHobbyKey(msg)
	case application.PanelMemory:
		switch {
		case key.Matches(msg, s.keys.Query):
			return s.openInput(modalMemoryQuery, "semantic query", false)
		case key.Matches(msg, s.keys.Forget):
			return s.openInput(modalForget, "subject to forget", false)
		}
	case application.PanelIQL:
		if key.Matches(msg, s.keys.Query) {
			return s.openInput(modalIQL, "IQL query", false)
		}
	}
	return nil
}

func (s *Shell) handleRestraintKey(msg tea.KeyMsg) tea.Cmd {
	if s.session == nil || !s.session.Loaded() {
		return nil
	}
	rows := s.session.Snapshot().Rows

	switch {
	case key.Matches(msg, s.keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(msg, s.keys.Down):
		if s.cursor < len(rows)-1 {
			s.cursor++
		}
	case key.Matches(msg, s.keys.Increase), key.Matches(msg, s.keys.Decrease):
		if s.cursor >= len(rows) {
			return nil
		}
		steps := 1
		if key.Matches(msg, s.keys.Decrease) {
			steps = -1
		}
		row := rows[s.cursor]
		if _, err := s.session.Nudge(row.Dimension, steps); err != nil {
			if errors.Is(err, domain.ErrDimensionLocked) {
				return s.authorize(row.Label+" is at its hard limit.", func() tea.Cmd {
					return s.nudge(row, steps)
				})
			}
			return s.setToast(err.Error(), toastError)
		}
	case key.Matches(msg, s.keys.Authorize):
		return s.authorize("Unlock dimensions at their hard limit.", func() tea.Cmd {
			return s.setToast("Authorization key held until the next save.", toastInfo)
		})
	case key.Matches(msg, s.keys.Reset):
		restored := s.session.Reset()
		if len(restored) == 0 {
			return nil
		}
		return s.setToast(fmt.Sprintf("Reset %d change(s).", len(restored)), toastInfo)
	case key.Matches(msg, s.keys.Save):
		return s.save()
	}
	return nil
}

func (s *Shell) nudge(row application.RestraintRow, steps int) tea.Cmd {
	if _, err := s.session.Nudge(row.Dimension, steps); err != nil {
		return s.setToast(err.Error(), toastError)
	}
	return nil
}

// authorize opens the key modal; then runs after the key is captured.
func (s *Shell) authorize(prompt string, then func() tea.Cmd) tea.Cmd {
	s.authPrompt = prompt
	s.afterAuth = then
	return s.openInput(modalAuthorize, "authorization key", true)
}

func (s *Shell) save() tea.Cmd {
	if s.saving {
		return nil
	}
	if s.session.State() == application.SessionClean {
		return s.setToast("No pending changes.", toastInfo)
	}
	if s.session.RequiresAuth() && !s.session.Authorized() {
		return s.authorize("A pending value exceeds its hard limit.", s.save)
	}

	s.saving = true
	session, ctx := s.session, s.ctx
	return func() tea.Msg {
		result, err := session.Save(ctx)
		return saveDoneMsg{result: result, err: err}
	}
}

func (s *Shell) handleSaved(msg saveDoneMsg) tea.Cmd {
	s.saving = false
	if errors.Is(msg.err, domain.ErrAuthorizationRequired) {
		return s.authorize("A pending value exceeds its hard limit.", s.save)
	}
	if msg.err != nil {
		return s.setToast("Save failed: "+msg.err.Error(), toastError)
	}

	res := msg.result
	for dim, err := range res.Failed {
		s.logger.Error("restraint update failed", zap.String("dimension", string(dim)), zap.Error(err))
	}
	if res.RefreshErr != nil {
		s.logger.Error("restraint refresh failed", zap.Error(res.RefreshErr))
	}

	var toast tea.Cmd
	switch {
	case len(res.Failed) == 0:
		toast = s.setToast(fmt.Sprintf("Saved %d change(s).", len(res.Saved)), toastSuccess)
	case len(res.Saved) == 0:
		return s.setToast(fmt.Sprintf("All %d update(s) failed.", len(res.Failed)), toastError)
	default:
		toast = s.setToast(fmt.Sprintf("Saved %d of %d change(s); %d failed.", len(res.Saved), res.Attempted(), len(res.Failed)), toastError)
	}

	// the audit trail under the matrix gained entries
	panel, ok := s.panel(application.PanelRestraints)
	if !ok {
		return toast
	}
	return tea.Batch(toast, s.load(panel))
}

func (s *Shell) handleDebtKey(msg tea.KeyMsg) tea.Cmd {
	if !key.Matches(msg, s.keys.RepayAll) {
		return nil
	}
	view, ok := s.views[application.PanelDebt].(application.DebtView)
	if !ok {
		return nil
	}
	if len(view.Summary.Items) == 0 {
		return s.setToast("No cognitive debt to repay.", toastInfo)
	}
	s.modal = modalConfirmRepay
	return nil
}

func (s *Shell) repayAll() tea.Cmd {
	view, _ := s.views[application.PanelDebt].(application.DebtView)
	items := view.Summary.Ordered()
	debt, ctx := s.debt, s.ctx
	return func() tea.Msg {
		tally, err := debt.RepayAll(ctx, items, func(int) bool { return true })
		return repayDoneMsg{tally: tally, err: err}
	}
}

func (s *Shell) handleRepaid(msg repayDoneMsg) tea.Cmd {
	var toast tea.Cmd
	switch {
	case errors.Is(msg.err, domain.ErrNothingToRepay):
		toast = s.setToast("No cognitive debt to repay.", toastInfo)
	case msg.err != nil:
		toast = s.setToast("Repay failed: "+msg.err.Error(), toastError)
	case msg.tally.Failed > 0:
		toast = s.setToast(fmt.Sprintf("Repaid %d, failed %d.", msg.tally.Succeeded, msg.tally.Failed), toastError)
	default:
		toast = s.setToast(fmt.Sprintf("Repaid %d item(s).", msg.tally.Succeeded), toastSuccess)
	}

	panel, ok := s.panel(application.PanelDebt)
	if !ok {
		return toast
	}
	return tea.Batch(toast, s.load(panel))
}

func (s *Shell) handleHobbyKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, s.keys.Start):
		return s.runAction(application.PanelHobby, func(ctx context.Context) (string, func(), error) {
			text, err := s.service.StartHobby(ctx)
			return firstNonEmpty(text, "Hobby started."), nil, err
		})
	case key.Matches(msg, s.keys.Stop):
		return s.runAction(application.PanelHobby, func(ctx context.Context) (string, func(), error) {
			text, err := s.service.StopHobby(ctx)
			return firstNonEmpty(text, "Hobby stopped."), nil, err
		})
	}
	return nil
}

// runAction performs a panel mutation off the update loop, then reloads the panel.
func (s *Shell) runAction(panel string, fn func(ctx context.Context) (string, func(), error)) tea.Cmd {
	if s.service == nil {
		return nil
	}
	ctx := s.ctx
	return func() tea.Msg {
		text, record, err := fn(ctx)
		return actionDoneMsg{panel: panel, text: text, err: err, record: record}
	}
}

func (s *Shell) handleAction(msg actionDoneMsg) tea.Cmd {
	if msg.err != nil {
		s.logger.Error("panel action failed", zap.String("panel", msg.panel), zap.Error(msg.err))
		return s.setToast(msg.err.Error(), toastError)
	}
	if msg.record != nil {
		msg.record()
	}

	toast := s.setToast(msg.text, toastSuccess)
	panel, ok := s.panel(msg.panel)
	if !ok {
		return toast
	}
	return tea.Batch(toast, s.load(panel))
}

func (s *Shell) openInput(kind modalKind, placeholder string, secret bool) tea.Cmd {
	s.modal = kind
	s.input.Reset()
	s.input.Placeholder = placeholder
	s.input.EchoMode = textinput.EchoNormal
	if secret {
		s.input.EchoMode = textinput.EchoPassword
		s.input.EchoCharacter = '•'
	}
	return s.input.Focus()
}

func (s *Shell) closeModal() {
	s.modal = modalNone
	s.input.Reset()
	s.input.Blur()
}

func (s *Shell) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	if s.modal == modalConfirmRepay {
		switch {
		case key.Matches(msg, s.keys.Confirm):
			s.modal = modalNone
			return s.repayAll()
		case key.Matches(msg, s.keys.Deny):
			s.modal = modalNone
			return s.setToast("Repay cancelled.", toastInfo)
		}
		return nil
	}

	switch {
	case key.Matches(msg, s.keys.Cancel):
		s.closeModal()
		s.afterAuth = nil
		return nil
	case key.Matches(msg, s.keys.Submit):
		return s.submitModal()
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return cmd
}

func (s *Shell) submitModal() tea.Cmd {
	value := s.input.Value()
	kind := s.modal

	if strings.TrimSpace(value) == "" {
		return s.setToast("A value is required.", toastError)
	}
	s.closeModal()

	switch kind {
	case modalAuthorize:
		then := s.afterAuth
		s.afterAuth = nil
		if err := s.session.Authorize(value); err != nil {
			return s.setToast(err.Error(), toastError)
		}
		if then == nil {
			return nil
		}
		return then()
	case modalMemoryQuery:
		return s.runAction(application.PanelMemory, func(ctx context.Context) (string, func(), error) {
			result, err := s.service.QueryMemory(ctx, value, domain.QueryTypeSemantic)
			if err != nil {
				return "", nil, err
			}
			return fmt.Sprintf("%d match(es).", len(result.Matches)), s.recordMemory(func(p *application.MemoryPanel) { p.RecordQuery(result) }), nil
		})
	case modalForget:
		return s.runAction(application.PanelMemory, func(ctx context.Context) (string, func(), error) {
			result, err := s.service.ForgetSubject(ctx, value, true)
			if err != nil {
				return "", nil, err
			}
			return firstNonEmpty(result.Message, "Forget request sent."), s.recordMemory(func(p *application.MemoryPanel) { p.RecordForget(result) }), nil
		})
	case modalIQL:
		return s.runAction(application.PanelIQL, func(ctx context.Context) (string, func(), error) {
			result, err := s.service.RunIQL(ctx, value)
			if err != nil {
				return "", nil, err
			}
			record := func() {
				if p, ok := s.lookupPanel(application.PanelIQL).(*application.IQLPanel); ok {
					p.RecordResult(result)
				}
			}
			return fmt.Sprintf("Query %s in %.1f ms.", result.Status, result.ExecutionTimeMS), record, nil
		})
	}
	return nil
}

func (s *Shell) recordMemory(fn func(*application.MemoryPanel)) func() {
	return func() {
		if p, ok := s.lookupPanel(application.PanelMemory).(*application.MemoryPanel); ok {
			fn(p)
		}
	}
}

func (s *Shell) lookupPanel(name string) application.Panel {
	panel, _ := s.panel(name)
	return panel
}

func (s *Shell) setToast(text string, level toastLevel) tea.Cmd {
	s.toastSeq++
	s.toast = text
	s.toastLevel = level
	seq := s.toastSeq
	return tea.Tick(s.toastDuration, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Package tui is the interactive attendee browser: an event list with
// search, a detail pane with the ticket selector, and the registration
// form. It drives service.Catalog and service.RegistrationFlow.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Shivanand-hulikatti/eventmaster/internal/inventory"
	"github.com/Shivanand-hulikatti/eventmaster/internal/model"
	"github.com/Shivanand-hulikatti/eventmaster/internal/service"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
)

const (
	focusName = iota
	focusEmail
	focusTicket
	focusCount
)

// Notices collects the latest notice from the workflows. It is safe for
// use from the commands bubbletea runs in the background.
type Notices struct {
	mu   sync.Mutex
	last service.Notice
}

// Notify implements service.Notifier.
func (n *Notices) Notify(notice service.Notice) {
	n.mu.Lock()
	n.last = notice
	n.mu.Unlock()
}

// Last returns the most recent notice.
func (n *Notices) Last() service.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

func (n *Notices) clear() {
	n.mu.Lock()
	n.last = service.Notice{}
	n.mu.Unlock()
}

type refreshedMsg struct{ err error }

type submittedMsg struct{ err error }

// Model is the bubbletea model of the browser.
type Model struct {
	ctx     context.Context
	keys    KeyMap
	catalog *service.Catalog
	flow    *service.RegistrationFlow
	notices *Notices

	mode      mode
	events    []model.Event
	cursor    int
	search    textinput.Model
	name      textinput.Model
	email     textinput.Model
	focus     int
	option    int
	loaded    bool
	signedOut bool
	width     int
}

// New builds a browser model. notices must be the Notifier the catalog
// and flow were constructed with.
func New(ctx context.Context, catalog *service.Catalog, flow *service.RegistrationFlow, notices *Notices) Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search name, location or description"

	name := textinput.New()
	name.Prompt = "Name:  "
	name.Placeholder = "Full name"

	email := textinput.New()
	email.Prompt = "Email: "
	email.Placeholder = "you@example.com"

	return Model{
		ctx:     ctx,
		keys:    DefaultKeyMap,
		catalog: catalog,
		flow:    flow,
		notices: notices,
		search:  search,
		name:    name,
		email:   email,
	}
}

// Init loads the event list.
func (m Model) Init() tea.Cmd {
	return m.refresh()
}

func (m Model) refresh() tea.Cmd {
	catalog, ctx := m.catalog, m.ctx
	return func() tea.Msg {
		return refreshedMsg{err: catalog.Refresh(ctx)}
	}
}

func (m Model) submit() tea.Cmd {
	flow, ctx := m.flow, m.ctx
	return func() tea.Msg {
		_, err := flow.Submit(ctx)
		return submittedMsg{err: err}
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case refreshedMsg:
		m.loaded = true
		m.noteSignOut(msg.err)
		m.applySearch()
		return m, nil

	case submittedMsg:
		m.noteSignOut(msg.err)
		if msg.err == nil {
			m.mode = modeList
			m.name.SetValue("")
			m.email.SetValue("")
			m.blurForm()
		}
		m.applySearch()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (m.signedOut && key.Matches(msg, m.keys.Quit)) {
			return m, tea.Quit
		}
		if m.signedOut {
			return m, nil
		}
		switch m.mode {
		case modeSearch:
			return m.handleSearchKeys(msg)
		case modeForm:
			return m.handleFormKeys(msg)
		}
		return m.handleListKeys(msg)
	}
	return m, nil
}

func (m *Model) noteSignOut(err error) {
	if errors.Is(err, service.ErrSignedOut) {
		m.signedOut = true
	}
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.events)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.Select):
		if len(m.events) == 0 {
			return m, nil
		}
		m.notices.clear()
		event := m.events[m.cursor]
		if err := m.flow.Select(event); err != nil {
			if errors.Is(err, service.ErrSoldOut) {
				m.notices.Notify(service.Notice{Kind: service.NoticeError, Message: event.Name + " is sold out."})
			}
			return m, nil
		}
		if _, ok := m.flow.Selected(); !ok {
			return m, nil
		}
		m.mode = modeForm
		m.focus = focusName
		m.option = firstAvailable(m.flow.Options())
		return m, m.focusForm()
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		if m.search.Value() != "" {
			m.search.SetValue("")
		} else {
			m.mode = modeList
			m.search.Blur()
		}
		m.applySearch()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applySearch()
	return m, cmd
}

func (m Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.flow.Deselect()
		m.mode = modeList
		m.blurForm()
		return m, nil
	case key.Matches(msg, m.keys.Next):
		m.focus = (m.focus + 1) % focusCount
		return m, m.focusForm()
	case key.Matches(msg, m.keys.Submit):
		if m.flow.State() == service.StateSubmitting {
			return m, nil
		}
		m.notices.clear()
		m.flow.SetAttendee(m.name.Value(), m.email.Value())
		return m, m.submit()
	}

	if m.focus == focusTicket {
		options := m.flow.Options()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.option = step(options, m.option, -1)
		case key.Matches(msg, m.keys.Down):
			m.option = step(options, m.option, 1)
		case key.Matches(msg, m.keys.Select):
			if m.option >= 0 && m.option < len(options) {
				if err := m.flow.SetTicketType(options[m.option].ID); err != nil {
					m.notices.Notify(service.Notice{Kind: service.NoticeError, Message: err.Error()})
				}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.focus == focusName {
		m.name, cmd = m.name.Update(msg)
	} else {
		m.email, cmd = m.email.Update(msg)
	}
	m.flow.SetAttendee(m.name.Value(), m.email.Value())
	return m, cmd
}

func (m *Model) focusForm() tea.Cmd {
	m.name.Blur()
	m.email.Blur()
	switch m.focus {
	case focusName:
		return m.name.Focus()
	case focusEmail:
		return m.email.Focus()
	}
	return nil
}

func (m *Model) blurForm() {
	m.name.Blur()
	m.email.Blur()
	m.focus = focusName
}

func (m *Model) applySearch() {
	m.events = inventory.Search(m.catalog.Events(), m.search.Value())
	if m.cursor >= len(m.events) {
		m.cursor = max(len(m.events)-1, 0)
	}
}

// step moves the ticket cursor to the next selectable option in dir.
func step(options []inventory.Option, from, dir int) int {
	for i := from + dir; i >= 0 && i < len(options); i += dir {
		if !options[i].Disabled {
			return i
		}
	}
	return from
}

func firstAvailable(options []inventory.Option) int {
	for i, o := range options {
		if !o.Disabled {
			return i
		}
	}
	return -1
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("EventMaster"))
	b.WriteString("\n\n")

	if m.signedOut {
		b.WriteString(noticeStyles[service.NoticeError].Render(service.SignedOutMessage))
		b.WriteString("\n\n" + faintStyle.Render("q quit") + "\n")
		return b.String()
	}

	if m.mode == modeSearch || m.search.Value() != "" {
		b.WriteString(m.search.View() + "\n\n")
	}

	switch {
	case !m.loaded && len(m.events) == 0:
		b.WriteString(faintStyle.Render("Loading events…") + "\n")
	case len(m.events) == 0:
		b.WriteString(faintStyle.Render("No events found.") + "\n")
	case m.catalog.Busy():
		b.WriteString(faintStyle.Render("Refreshing…") + "\n")
	}
	for i, e := range m.events {
		line := fmt.Sprintf("%s  %s %s  %s", e.Name, e.Date, e.Time, e.Location)
		if inventory.IsSoldOut(e) {
			line += "  " + soldOutStyle.Render("Sold Out")
		} else {
			line += faintStyle.Render(fmt.Sprintf("  %d left", inventory.Aggregate(e).Remaining))
		}
		if i == m.cursor && m.mode != modeForm {
			b.WriteString(cursorStyle.Render("> ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	if m.mode == modeForm {
		if e, ok := m.flow.Selected(); ok {
			b.WriteString("\n" + detailStyle.Render(m.detailView(e)) + "\n")
		}
	}

	if n := m.notices.Last(); n.Message != "" {
		b.WriteString("\n" + noticeStyles[n.Kind].Render(n.Message) + "\n")
	}

	b.WriteString("\n" + faintStyle.Render(m.helpLine()) + "\n")
	return b.String()
}

func (m Model) detailView(e model.Event) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(e.Name) + "\n")
	b.WriteString(fmt.Sprintf("%s at %s, %s\n", e.Date, e.Time, e.Location))
	if e.Description != "" {
		b.WriteString(e.Description + "\n")
	}
	b.WriteString("\n")

	chosen := m.flow.Form().TicketTypeID
	for i, o := range m.flow.Options() {
		marker := "( )"
		if o.ID == chosen {
			marker = "(•)"
		}
		label := marker + " " + o.Label
		switch {
		case o.Disabled:
			label = disabledStyle.Render(label)
		case m.focus == focusTicket && i == m.option:
			label = cursorStyle.Render(label)
		}
		b.WriteString(label + "\n")
	}
	b.WriteString("\n" + m.name.View() + "\n" + m.email.View())
	if m.flow.State() == service.StateSubmitting {
		b.WriteString("\n\n" + faintStyle.Render("Registering…"))
	}
	return b.String()
}

func (m Model) helpLine() string {
	bindings := []key.Binding{m.keys.Up, m.keys.Down, m.keys.Select, m.keys.Search, m.keys.Refresh, m.keys.Quit}
	if m.mode == modeForm {
		bindings = []key.Binding{m.keys.Next, m.keys.Select, m.keys.Submit, m.keys.Back}
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

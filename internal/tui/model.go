package tui

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/naufalhakim/catatin/internal/common"
	"github.com/naufalhakim/catatin/internal/engine"
	"github.com/naufalhakim/catatin/internal/model"
	"github.com/naufalhakim/catatin/internal/nlp"
	"github.com/naufalhakim/catatin/internal/review"
)

// editField identifies which candidate field is being edited.
type editField int

const (
	fieldItem editField = iota
	fieldAmount
	fieldCategory
	fieldDate
	fieldNotes
	fieldCount
)

func (f editField) label() string {
	switch f {
	case fieldItem:
		return "item"
	case fieldAmount:
		return "amount"
	case fieldCategory:
		return "category"
	case fieldDate:
		return "date"
	case fieldNotes:
		return "notes"
	default:
		return ""
	}
}

// Model holds the quick-add TUI state. The review session is the source of
// truth; the model only tracks presentation concerns on top of it.
type Model struct {
	engine  *engine.Engine
	session *review.Session
	ownerID string

	input   textarea.Model
	editor  textinput.Model
	spin    spinner.Model
	keymap  KeyMap

	cursor    int
	editing   bool
	editField editField
	statusMsg string
	lastError string
	saved     int64
	width     int
	quitting  bool
}

// newModel creates the initial quick-add model.
func newModel(eng *engine.Engine, ownerID string) Model {
	input := textarea.New()
	input.Placeholder = "nasi goreng 19rb kemarin, grab ke kantor 25rb..."
	input.Focus()
	input.SetHeight(3)
	input.CharLimit = 2000

	editor := textinput.New()
	editor.CharLimit = 200

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = titleStyle

	return Model{
		engine:  eng,
		session: review.NewSession(),
		ownerID: ownerID,
		input:   input,
		editor:  editor,
		spin:    spin,
		keymap:  DefaultKeyMap(),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// extractCmd runs extraction off the event loop.
func (m Model) extractCmd(text string) tea.Cmd {
	eng, ownerID := m.engine, m.ownerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		candidates, err := eng.Parse(ctx, ownerID, text, time.Now())
		return extractResultMsg{candidates: candidates, err: err}
	}
}

// commitCmd persists the session's candidates.
func (m Model) commitCmd(candidates []model.ExpenseCandidate) tea.Cmd {
	eng, ownerID := m.engine, m.ownerID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		saved, err := eng.Commit(ctx, ownerID, candidates)
		return commitResultMsg{saved: saved, err: err}
	}
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(min(msg.Width-4, 80))
		return m, nil

	case spinner.TickMsg:
		if m.session.State() == review.StateExtracting || m.session.State() == review.StateCommitting {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case extractResultMsg:
		if msg.err != nil {
			m.session.ExtractFailed()
			m.lastError = userMessage(msg.err)
			m.input.SetValue(m.session.SourceText())
			m.input.Focus()
			return m, nil
		}
		m.lastError = ""
		m.cursor = 0
		if err := m.session.ExtractSucceeded(msg.candidates); err != nil {
			m.lastError = err.Error()
		}
		return m, nil

	case commitResultMsg:
		if msg.err != nil {
			m.session.CommitFailed()
			m.lastError = userMessage(msg.err)
			return m, nil
		}
		m.session.CommitSucceeded()
		m.saved = msg.saved
		m.statusMsg = "saved " + strconv.FormatInt(msg.saved, 10) + " expense(s)"
		m.lastError = ""
		m.input.Reset()
		m.input.Focus()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateFocused(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.handleEditKey(msg)
	}

	switch m.session.State() {
	case review.StateEmpty:
		// Free-typing state: only control keys are commands, letters
		// belong to the textarea.
		switch {
		case msg.Type == tea.KeyCtrlC, msg.Type == tea.KeyEsc && m.input.Value() == "":
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keymap.Submit):
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				// Nothing to parse; ignore the keypress.
				return m, nil
			}
			if err := m.session.BeginExtract(text); err != nil {
				m.lastError = err.Error()
				return m, nil
			}
			m.statusMsg = ""
			m.lastError = ""
			m.input.Blur()
			return m, tea.Batch(m.spin.Tick, m.extractCmd(text))
		}
		return m.updateFocused(msg)

	case review.StateExtracting, review.StateCommitting:
		if msg.Type == tea.KeyCtrlC {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case review.StateReviewReady:
		return m.handleReviewKey(msg)
	}
	return m, nil
}

func (m Model) handleReviewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Cancel):
		_ = m.session.Discard()
		m.lastError = ""
		m.input.Reset()
		m.input.Focus()
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.session.Candidates())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keymap.Delete):
		if err := m.session.Delete(m.cursor); err == nil && m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keymap.Add):
		idx, err := m.session.Add(time.Now())
		if err == nil {
			m.cursor = idx
			return m.startEdit(fieldItem)
		}
		return m, nil

	case key.Matches(msg, m.keymap.Edit):
		if len(m.session.Candidates()) == 0 {
			return m, nil
		}
		return m.startEdit(fieldItem)

	case key.Matches(msg, m.keymap.Commit):
		if err := m.session.BeginCommit(); err != nil {
			m.lastError = userMessage(err)
			return m, nil
		}
		m.lastError = ""
		return m, tea.Batch(m.spin.Tick, m.commitCmd(m.session.Candidates()))
	}
	return m, nil
}

// startEdit opens the field editor for the candidate under the cursor.
func (m Model) startEdit(field editField) (tea.Model, tea.Cmd) {
	c := m.session.Candidates()[m.cursor]
	m.editing = true
	m.editField = field

	switch field {
	case fieldItem:
		m.editor.SetValue(c.Item)
	case fieldAmount:
		m.editor.SetValue(strconv.FormatInt(c.Amount, 10))
	case fieldCategory:
		m.editor.SetValue(c.CategoryLabel)
	case fieldDate:
		m.editor.SetValue(c.Date)
	case fieldNotes:
		m.editor.SetValue(c.Notes)
	}
	m.editor.CursorEnd()
	m.editor.Focus()
	return m, textinput.Blink
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.editor.Blur()
		return m, nil

	case tea.KeyEnter:
		if err := m.applyEdit(); err != nil {
			m.lastError = err.Error()
			return m, nil
		}
		m.lastError = ""
		// Walk to the next field; stop editing after the last one.
		if m.editField < fieldCount-1 {
			return m.startEdit(m.editField + 1)
		}
		m.editing = false
		m.editor.Blur()
		return m, nil

	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// applyEdit writes the editor value back into the current candidate. Amount
// accepts the same shorthand as chat input ("19rb", "1,5jt"); dates accept
// relative phrases. Category edits go through the session's pending-label
// flow so a label typed during review is queued once and assigned here.
func (m *Model) applyEdit() error {
	value := m.editor.Value()

	if m.editField == fieldCategory {
		trimmed := strings.TrimSpace(value)
		current := m.session.Candidates()[m.cursor]
		if trimmed == "" || strings.EqualFold(trimmed, current.CategoryLabel) {
			return nil
		}
		return m.session.AddPendingCategory(trimmed, m.cursor)
	}

	return m.session.Update(m.cursor, func(c *model.ExpenseCandidate) {
		switch m.editField {
		case fieldItem:
			c.Item = value
		case fieldAmount:
			if amount, err := nlp.NormalizeAmount(value); err == nil {
				c.Amount = amount
			}
		case fieldDate:
			if date, err := nlp.ResolveDate(value, time.Now()); err == nil {
				c.Date = date.Format(model.DateLayout)
			}
		case fieldNotes:
			c.Notes = value
		}
	})
}

func (m Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.session.State() == review.StateEmpty {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// userMessage prefers the human-readable side of an error.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

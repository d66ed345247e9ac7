package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/briefing-studio/internal/briefing"
)

const textareaHeight = 4

// optionItem implements list.Item for choice fields.
type optionItem briefing.Option

func (o optionItem) Title() string       { return o.Label }
func (o optionItem) Description() string { return "" }
func (o optionItem) FilterValue() string { return o.Value }

// fieldWidget edits one draft field with the widget its prompt calls for:
// a list for catalog fields, a textarea for long answers, a textinput otherwise.
type fieldWidget struct {
	field  briefing.Field
	prompt briefing.Prompt

	input    textinput.Model
	area     textarea.Model
	choice   list.Model
	selected string
	focused  bool
}

func newFieldWidget(field briefing.Field, value string, width int) *fieldWidget {
	w := &fieldWidget{field: field, prompt: briefing.PromptFor(field)}
	switch {
	case w.prompt.IsChoice():
		items := make([]list.Item, len(w.prompt.Options))
		selectedIdx := 0
		for i, opt := range w.prompt.Options {
			items[i] = optionItem(opt)
			if opt.Value == value {
				selectedIdx = i
			}
		}
		delegate := list.NewDefaultDelegate()
		delegate.ShowDescription = false
		delegate.SetSpacing(0)
		choice := list.New(items, delegate, width, len(items))
		choice.SetShowTitle(false)
		choice.SetShowStatusBar(false)
		choice.SetShowPagination(false)
		choice.SetShowHelp(false)
		choice.SetFilteringEnabled(false)
		choice.DisableQuitKeybindings()
		choice.Select(selectedIdx)
		w.choice = choice
		w.selected = value
	case w.prompt.Multiline:
		area := textarea.New()
		area.Placeholder = w.prompt.Placeholder
		area.ShowLineNumbers = false
		area.SetWidth(width)
		area.SetHeight(textareaHeight)
		area.SetValue(value)
		area.Blur()
		w.area = area
	default:
		input := textinput.New()
		input.Placeholder = w.prompt.Placeholder
		input.CharLimit = 120
		input.Width = width
		input.SetValue(value)
		input.Blur()
		w.input = input
	}
	return w
}

// Value returns the widget's current value.
func (w *fieldWidget) Value() string {
	switch {
	case w.prompt.IsChoice():
		return w.selected
	case w.prompt.Multiline:
		return w.area.Value()
	default:
		return w.input.Value()
	}
}

func (w *fieldWidget) Focus() tea.Cmd {
	w.focused = true
	switch {
	case w.prompt.IsChoice():
		return nil
	case w.prompt.Multiline:
		return w.area.Focus()
	default:
		return w.input.Focus()
	}
}

func (w *fieldWidget) Blur() {
	w.focused = false
	switch {
	case w.prompt.IsChoice():
	case w.prompt.Multiline:
		w.area.Blur()
	default:
		w.input.Blur()
	}
}

func (w *fieldWidget) SetWidth(width int) {
	switch {
	case w.prompt.IsChoice():
		w.choice.SetWidth(width)
	case w.prompt.Multiline:
		w.area.SetWidth(width)
	default:
		w.input.Width = width
	}
}

// Update forwards msg to the underlying widget and reports whether the value
// changed.
func (w *fieldWidget) Update(msg tea.Msg, choose key.Binding) (tea.Cmd, bool) {
	before := w.Value()
	var cmd tea.Cmd
	switch {
	case w.prompt.IsChoice():
		if keyMsg, ok := msg.(tea.KeyMsg); ok && key.Matches(keyMsg, choose) {
			if item, ok := w.choice.SelectedItem().(optionItem); ok {
				w.selected = item.Value
			}
			break
		}
		w.choice, cmd = w.choice.Update(msg)
	case w.prompt.Multiline:
		w.area, cmd = w.area.Update(msg)
	default:
		w.input, cmd = w.input.Update(msg)
	}
	return cmd, w.Value() != before
}

func (w *fieldWidget) View() string {
	label := w.prompt.Label
	if w.field.Required() {
		label += " *"
	}
	labelStyle := lipgloss.NewStyle().Bold(true)
	if w.focused {
		labelStyle = labelStyle.Foreground(lipgloss.Color("#5B8DEF"))
	}
	lines := []string{labelStyle.Render(label)}
	if w.prompt.Help != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(w.prompt.Help))
	}
	switch {
	case w.prompt.IsChoice():
		if w.focused {
			lines = append(lines, w.choice.View())
		}
		current := w.prompt.Placeholder
		if w.selected != "" {
			current = "✓ " + briefing.LabelFor(w.field, w.selected)
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Render(current))
	case w.prompt.Multiline:
		lines = append(lines, w.area.View())
	default:
		lines = append(lines, w.input.View())
	}
	return strings.Join(lines, "\n")
}

// stepForm holds the widgets of one wizard step.
type stepForm struct {
	step    briefing.Step
	widgets []*fieldWidget
	focus   int
}

func newStepForm(step briefing.Step, draft briefing.Draft, width int) *stepForm {
	f := &stepForm{step: step}
	for _, field := range briefing.FieldsFor(step) {
		f.widgets = append(f.widgets, newFieldWidget(field, draft.Get(field), width))
	}
	if len(f.widgets) > 0 {
		f.widgets[0].Focus()
	}
	return f
}

func (f *stepForm) focused() *fieldWidget {
	if f == nil || len(f.widgets) == 0 {
		return nil
	}
	return f.widgets[f.focus]
}

// cycle moves focus by delta, wrapping around.
func (f *stepForm) cycle(delta int) tea.Cmd {
	if f == nil || len(f.widgets) == 0 {
		return nil
	}
	f.widgets[f.focus].Blur()
	n := len(f.widgets)
	f.focus = ((f.focus+delta)%n + n) % n
	return f.widgets[f.focus].Focus()
}

func (f *stepForm) SetWidth(width int) {
	if f == nil {
		return
	}
	for _, w := range f.widgets {
		w.SetWidth(width)
	}
}

func (f *stepForm) View() string {
	if f == nil {
		return ""
	}
	info := briefing.Info(f.step)
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render(fmt.Sprintf("Etapa %d: %s", int(f.step), info.Title))
	subtitle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(fmt.Sprintf("%s · %d de %d", info.Description, int(f.step), int(briefing.LastStep)))
	sections := []string{title, subtitle, ""}
	for _, w := range f.widgets {
		sections = append(sections, w.View(), "")
	}
	return strings.Join(sections, "\n")
}

package components

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/chameleoncloud/trovi/internal/ui"
	"github.com/chameleoncloud/trovi/internal/ui/theme"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// confirmModel is the bubbletea model for the confirm component.
type confirmModel struct {
	message   string
	confirmed bool
	done      bool
	cancelled bool
	theme     theme.Theme
}

var confirmKeys = struct {
	Yes    key.Binding
	No     key.Binding
	Toggle key.Binding
	Submit key.Binding
	Quit   key.Binding
}{
	Yes:    key.NewBinding(key.WithKeys("y", "Y")),
	No:     key.NewBinding(key.WithKeys("n", "N")),
	Toggle: key.NewBinding(key.WithKeys("left", "right", "h", "l", "tab")),
	Submit: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmKeys.Quit):
		m.confirmed = false
		m.cancelled = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Yes):
		m.confirmed = true
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.No):
		m.confirmed = false
		m.done = true
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Toggle):
		m.confirmed = !m.confirmed
	case key.Matches(keyMsg, confirmKeys.Submit):
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}

	styles := m.theme.Styles()
	yes, no := styles.Muted.Render(" Yes "), styles.Selected.Render("[No]")
	if m.confirmed {
		yes, no = styles.Selected.Render("[Yes]"), styles.Muted.Render(" No ")
	}
	return fmt.Sprintf("%s %s %s", m.message, yes, no)
}

// ConfirmWithIO asks a yes/no question, defaulting to no. Without a terminal
// it falls back to reading a line from in.
func ConfirmWithIO(message string, in io.Reader, out io.Writer) (bool, error) {
	if !ui.IsTTY(out) || !ui.IsStdinTTY() {
		return confirmSimple(message, in, out)
	}

	p := tea.NewProgram(confirmModel{message: message, theme: theme.Current()}, tea.WithOutput(out))
	result, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirm failed: %w", err)
	}

	final := result.(confirmModel)
	if final.cancelled {
		return false, ErrCancelled
	}
	return final.confirmed, nil
}

func confirmSimple(message string, in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprintf(out, "%s (y/N): ", message)

	input, err := readLine(in)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(input) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// passwordModel is a masked single-line input.
type passwordModel struct {
	input     textinput.Model
	done      bool
	cancelled bool
}

func (m passwordModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m passwordModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.cancelled = true
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m passwordModel) View() string {
	if m.done {
		return ""
	}
	return m.input.View()
}

// PasswordWithIO reads a secret without echoing it. Without a terminal it
// reads a plain line from in.
func PasswordWithIO(prompt string, in io.Reader, out io.Writer) (string, error) {
	if !ui.IsTTY(out) || !ui.IsStdinTTY() {
		fmt.Fprintf(out, "%s: ", prompt)
		return readLine(in)
	}

	th := theme.Current()
	ti := textinput.New()
	ti.Prompt = prompt + ": "
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 512
	ti.Width = 50
	ti.PromptStyle = th.Styles().Emphasis
	ti.Cursor.Style = th.Styles().Cursor
	ti.Focus()

	result, err := tea.NewProgram(passwordModel{input: ti}, tea.WithOutput(out)).Run()
	if err != nil {
		return "", fmt.Errorf("password input failed: %w", err)
	}

	final := result.(passwordModel)
	if final.cancelled {
		return "", ErrCancelled
	}
	return final.input.Value(), nil
}

func readLine(in io.Reader) (string, error) {
	reader, ok := in.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(in)
	}
	line, err := reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

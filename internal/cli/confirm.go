package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// confirmModel is a minimal yes/no prompt. Enter defaults to no, so an
// accidental keypress never triggers an install or removal.
type confirmModel struct {
	question string
	answer   bool
	done     bool
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.answer = true
		m.done = true
		return m, tea.Quit
	case "n", "N", "enter", "q", "esc", "ctrl+c":
		m.answer = false
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	return m.question + " " + StyleDim.Render("[y/N]") + " "
}

// confirm asks the user a yes/no question. When stdin is not a terminal
// (piped input, CI), it falls back to a plain line read.
func confirm(question string) (bool, error) {
	if fi, err := os.Stdin.Stat(); err == nil && fi.Mode()&os.ModeCharDevice == 0 {
		return confirmPlain(question)
	}

	p := tea.NewProgram(confirmModel{question: question})
	result, err := p.Run()
	if err != nil {
		return confirmPlain(question)
	}
	m, ok := result.(confirmModel)
	if !ok {
		return false, nil
	}
	return m.answer, nil
}

func confirmPlain(question string) (bool, error) {
	fmt.Print(question + " [y/N] ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

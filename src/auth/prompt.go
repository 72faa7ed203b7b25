package auth

import (
	"os"

	"github.com/charmbracelet/huh"
)

// FormPrompter prompts on the terminal. The password is read without echo.
type FormPrompter struct {
	// Accessible switches to plain line prompts, used when stdin is not a
	// terminal.
	Accessible bool
}

// NewFormPrompter returns a prompter suited to the current stdin.
func NewFormPrompter() *FormPrompter {
	return &FormPrompter{Accessible: !IsTerminal(os.Stdin.Fd())}
}

func (p *FormPrompter) Username() (string, error) {
	var username string
	err := p.run(huh.NewInput().
		Title("Admin username").
		Description("Give database administrator username").
		Prompt(": ").
		Inline(true).
		Value(&username))
	return username, err
}

func (p *FormPrompter) Password() (string, error) {
	var password string
	err := p.run(huh.NewInput().
		Title("Admin password").
		Description("Give database administrator password").
		Prompt(": ").
		Inline(true).
		EchoMode(huh.EchoModePassword).
		Value(&password))
	return password, err
}

func (p *FormPrompter) run(field huh.Field) error {
	return huh.NewForm(huh.NewGroup(field)).
		WithTheme(huh.ThemeBase16()).
		WithAccessible(p.Accessible).
		Run()
}

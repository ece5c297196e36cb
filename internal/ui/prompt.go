package ui

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// Prompter is the promptui-backed Interactor used in production.
type Prompter struct{}

// NewPrompter creates the terminal Interactor.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Select presents a single-choice list with the cursor on defaultIndex.
func (p *Prompter) Select(label string, options []string, defaultIndex int) (int, error) {
	prompt := promptui.Select{
		Label:     label,
		Items:     options,
		CursorPos: defaultIndex,
		Size:      len(options),
	}
	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection aborted: %w", err)
	}
	return index, nil
}

// Confirm asks a yes/no question; declining is not an error.
func (p *Prompter) Confirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	_, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation aborted: %w", err)
	}
	return true, nil
}

// Input reads one line of free text.
func (p *Prompter) Input(label string, allowEmpty bool) (string, error) {
	prompt := promptui.Prompt{Label: label}
	if !allowEmpty {
		prompt.Validate = func(s string) error {
			if s == "" {
				return errors.New("value must not be empty")
			}
			return nil
		}
	}
	result, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("input aborted: %w", err)
	}
	return result, nil
}

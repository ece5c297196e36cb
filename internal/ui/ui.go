// Package ui provides the interactive terminal surface: transient status
// lines, a typing effect for oracle output, and prompt widgets.
package ui

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

// Interactor presents choices and collects user decisions. The workflow
// depends on this interface only; tests inject a scripted fake.
type Interactor interface {
	// Select presents a single-choice prompt with the cursor pre-positioned
	// on defaultIndex and returns the chosen index.
	Select(label string, options []string, defaultIndex int) (int, error)
	// Confirm asks a yes/no question.
	Confirm(label string) (bool, error)
	// Input reads one line of free text.
	Input(label string, allowEmpty bool) (string, error)
}

// Color helpers for diffs and labels.
var (
	Removed = color.New(color.FgRed).SprintFunc()
	Added   = color.New(color.FgGreen).SprintFunc()
	Bold    = color.New(color.Bold).SprintFunc()
)

// Status writes a transient progress message over the current line.
func Status(text string) {
	ClearStatus()
	fmt.Printf("%s\r", text)
}

// ClearStatus erases the current status line.
func ClearStatus() {
	fmt.Print("\r\x1b[2K")
}

// TypeOut prints a line character by character.
func TypeOut(text string) {
	for _, r := range text {
		fmt.Printf("%c", r)
		time.Sleep(time.Millisecond)
	}
	fmt.Println()
}

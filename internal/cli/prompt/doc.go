// Package prompt asks the operator for input on the terminal.
//
// Prompts write to stderr-like output and read line by line from the input.
// Masked prompts disable echo when the input is a real terminal, and the
// method menu is a bubbletea list there. Every read honors context
// cancellation.
//
// Package prompttest provides a scripted Prompter for tests.
package prompt

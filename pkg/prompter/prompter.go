package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Input and Output default to the terminal and can be swapped in tests
var (
	Input  io.Reader = os.Stdin
	Output io.Writer = os.Stdout
)

var reader *bufio.Reader

func lineReader() *bufio.Reader {
	if reader == nil {
		reader = bufio.NewReader(Input)
	}
	return reader
}

// Reset drops buffered input, for use after Input changes
func Reset() {
	reader = nil
}

// PromptString prompts for a single line
func PromptString(label string) (string, error) {
	fmt.Fprint(Output, label)
	input, err := lineReader().ReadString('\n')
	if err != nil && (err != io.EOF || input == "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// PromptPassword prompts for a password without echo when Input is a terminal
func PromptPassword(label string) (string, error) {
	f, ok := Input.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return PromptString(label)
	}

	fmt.Fprint(Output, label)
	pw, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(Output)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// PromptConfirm asks a yes/no question
func PromptConfirm(label string) (bool, error) {
	answer, err := PromptString(label + " (y/n) ")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

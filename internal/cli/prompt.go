package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// StdinPrompter implements dedup.Prompter by asking on standard output and
// reading a single-character response from standard input.
type StdinPrompter struct {
	reader *bufio.Reader
}

// NewStdinPrompter constructs a prompter reading from os.Stdin.
func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{reader: bufio.NewReader(os.Stdin)}
}

// Confirm implements dedup.Prompter.
func (p *StdinPrompter) Confirm(dest string) (bool, error) {
	fmt.Printf("overwrite '%s'? ", dest)
	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	if len(line) == 0 {
		return false, nil
	}
	switch line[0] {
	case 'y', 'Y':
		return true, nil
	default:
		return false, nil
	}
}

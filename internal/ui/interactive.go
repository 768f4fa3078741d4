package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hlop3z/erdpad/internal/cli"
)

// Confirm displays a yes/no question on out and reads the answer from in.
// An empty answer or a read failure yields defaultYes.
func Confirm(in io.Reader, out io.Writer, message string, defaultYes bool) bool {
	var suffix string
	if defaultYes {
		suffix = cli.Dim(" (Y/n)")
	} else {
		suffix = cli.Dim(" (y/N)")
	}

	fmt.Fprint(out, cli.Warning("? ")+message+suffix+": ")

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		return defaultYes
	}

	input = strings.ToLower(strings.TrimSpace(input))

	if input == "" {
		return defaultYes
	}

	return input == "y" || input == "yes"
}

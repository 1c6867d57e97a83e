package logger

import "os"

// isTerminal reports whether f refers to an interactive terminal.
// Color output is only enabled for terminals.
func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

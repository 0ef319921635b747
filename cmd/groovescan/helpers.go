package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// resolveLogFormat honors an explicit config choice; an empty value picks
// console for terminals and JSON when output is redirected.
func resolveLogFormat(configured string, out io.Writer) string {
	if format := strings.TrimSpace(configured); format != "" {
		return format
	}
	if isTerminal(out) {
		return "console"
	}
	return "json"
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

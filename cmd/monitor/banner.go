package main

import (
	"fmt"
	"io"
)

const version = "1.0"

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "▒█▀▀█ ▒█▀▀▀ ▒█▀▀▀█ ▒█░▒█ ▒█░░░ ▀▀█▀▀ ▒█▀▀▀█")
	fmt.Fprintln(w, "▒█▄▄▀ ▒█▀▀▀ ░▀▀▀▄▄ ▒█░▒█ ▒█░░░ ░▒█░░ ░▀▀▀▄▄")
	fmt.Fprintf(w, "▒█░▒█ ▒█▄▄▄ ▒█▄▄▄█ ░▀▄▄▀ ▒█▄▄█ ░▒█░░ ▒█▄▄▄█ v%s\n\n", version)
}

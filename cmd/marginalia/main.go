// Command marginalia is a terminal annotation viewer for a single PDF:
// it shows each page's extracted text beside an editable per-page note and
// can copy the combined notes to the system clipboard.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tsawler/marginalia"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: marginalia <file.pdf>")
		os.Exit(1)
	}
	path := os.Args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "marginalia: %v\n", err)
		os.Exit(1)
	}

	// The declared media type comes from the file's extension, standing in
	// for the picker a graphical shell would provide. The bytes themselves
	// are not sniffed.
	mediaType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if i := strings.IndexByte(mediaType, ';'); i >= 0 {
		mediaType = mediaType[:i]
	}

	// The alternate screen owns stdout, so session logging is discarded.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	session := marginalia.New(marginalia.WithLogger(logger))

	p := tea.NewProgram(newModel(session, filepath.Base(path), data, mediaType), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "marginalia: %v\n", err)
		os.Exit(1)
	}
}

package display

import (
	"fmt"
	"io"

	"github.com/backmassage/glitchbatch/internal/term"
)

const bannerArt = `      _ _ _       _     _           _       _
  __ _| (_) |_ ___| |__ | |__   __ _| |_ ___| |__
 / _` + "`" + ` | | | __/ __| '_ \| '_ \ / _` + "`" + ` | __/ __| '_ \
| (_| | | | || (__| | | | |_) | (_| | || (__| | | |
 \__, |_|_|\__\___|_| |_|_.__/ \__,_|\__\___|_| |_|
 |___/`

// PrintBanner writes the ASCII art banner to w in the title style.
func PrintBanner(w io.Writer) {
	fmt.Fprintln(w, term.Title.Render(bannerArt))
}

// Heading returns "=== text ===" in the title style, used to open and close
// a batch.
func Heading(text string) string {
	return term.Title.Render("=== " + text + " ===")
}

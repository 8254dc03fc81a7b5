package render

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// DefaultRenderer is a buffered ANSI cell writer on the terminal's
// alternate buffer. Writes accumulate and hit stdout once per Flush.
type DefaultRenderer struct {
	buffer       strings.Builder
	restoreState *term.State
}

func (r *DefaultRenderer) Init() error {
	state, err := term.MakeRaw(int(os.Stdout.Fd()))
	if nil != err {
		return err
	}
	r.restoreState = state

	fmt.Printf("%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Printf("%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	return term.Restore(int(os.Stdout.Fd()), r.restoreState)
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) ClearRow(row int) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";1H\033[2K")
}

func (r *DefaultRenderer) Flush() {
	os.Stdout.WriteString(r.buffer.String())
	r.buffer.Reset()
}

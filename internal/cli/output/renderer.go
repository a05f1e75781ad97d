package output

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Renderer writes CLI output, styling it only when stdout is a terminal.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	tty    bool
	styles *Styles
}

// NewRenderer creates a renderer for the given writers, detecting whether w
// is a terminal.
func NewRenderer(w, errW io.Writer) *Renderer {
	return NewRendererWithTTY(w, errW, IsTerminal(w))
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(w, errW io.Writer, tty bool) *Renderer {
	styles := PlainStyles()
	if tty {
		styles = NewStyles()
	}
	return &Renderer{w: w, errW: errW, tty: tty, styles: styles}
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsTTY reports whether the renderer writes to a terminal.
func (r *Renderer) IsTTY() bool { return r.tty }

// Styles returns the active style set.
func (r *Renderer) Styles() *Styles { return r.styles }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.w }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errW }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted text to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Success writes a success line.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.Success.Render(msg))
}

// Error writes an "Error: " line to the error writer.
func (r *Renderer) Error(err error) {
	_, _ = fmt.Fprintln(r.errW, r.styles.Error.Render("Error: "+err.Error()))
}

// Muted writes a de-emphasised line.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// Banner writes the boxed program banner.
func (r *Renderer) Banner(title string) {
	r.Println(r.styles.Banner.Render(r.styles.Title.Render(title)))
}

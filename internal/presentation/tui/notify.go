package tui

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"golang.org/x/term"

	"github.com/aretw0/printdesk/pkg/trigger"
)

// Notifier prints trigger notifications as styled lines.
type Notifier struct {
	w      io.Writer
	styles Styles
}

// NewNotifier writes notifications to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w, styles: DefaultStyles()}
}

// Notify implements trigger.Notifier.
func (n *Notifier) Notify(note trigger.Notification) {
	style := n.styles.Success
	icon := "✔"
	switch note.Level {
	case trigger.LevelWarning:
		style, icon = n.styles.Warning, "!"
	case trigger.LevelError:
		style, icon = n.styles.Error, "✖"
	}
	fmt.Fprintln(n.w, style.Render(icon+" "+note.Title))
	if note.Message != "" {
		fmt.Fprintln(n.w, n.styles.Description.Render("  "+note.Message))
	}
}

// Opener opens generated files with the desktop handler when attached to a
// terminal, and prints the URL otherwise.
type Opener struct {
	w      io.Writer
	launch bool
	run    func(name string, args ...string) error
}

// NewOpener prints URLs to w. Files are launched only when launch is set and
// stdout is a terminal.
func NewOpener(w io.Writer, launch bool) *Opener {
	return &Opener{
		w:      w,
		launch: launch && IsTerminal(os.Stdout),
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

// Open implements trigger.Opener.
func (o *Opener) Open(url string) error {
	fmt.Fprintf(o.w, "Output: %s\n", url)
	if !o.launch {
		return nil
	}
	switch runtime.GOOS {
	case "darwin":
		return o.run("open", url)
	case "windows":
		return o.run("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return o.run("xdg-open", url)
	}
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

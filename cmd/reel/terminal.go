package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/lthms/reel/internal/engine"
	"github.com/lthms/reel/internal/feedback"
	"github.com/lthms/reel/internal/video"
)

const prompt = "Do you want to watch it? (never/maybe/definitely/quit): "

// terminal is the line-oriented engine.Presenter used by "reel start".
type terminal struct {
	in    io.Reader
	out   io.Writer
	width int // wrap width for the summary; 0 disables wrapping

	start sync.Once
	lines chan inputLine
}

type inputLine struct {
	text string
	err  error
}

func newTerminal(in io.Reader, out io.Writer, width int) *terminal {
	return &terminal{in: in, out: out, width: width, lines: make(chan inputLine)}
}

// scan feeds input lines to ReadAnswer. It runs in its own goroutine so a
// blocked read never holds up cancellation; the channel is closed after the
// terminal error.
func (t *terminal) scan() {
	defer close(t.lines)
	sc := bufio.NewScanner(t.in)
	for sc.Scan() {
		t.lines <- inputLine{text: sc.Text()}
	}
	err := sc.Err()
	if err == nil {
		err = io.EOF
	}
	t.lines <- inputLine{err: err}
}

// stdioTerminal wraps summaries to the terminal width when stdout is a TTY.
func stdioTerminal() *terminal {
	width := 0
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w >= 40 {
			width = w
		} else {
			width = 80
		}
	}
	return newTerminal(os.Stdin, os.Stdout, width)
}

func (t *terminal) Present(p engine.Pick) error {
	c := p.Candidate
	var b strings.Builder
	b.WriteString("\nRecommended video:\n")
	fmt.Fprintf(&b, "Title: %s\n", c.Title)
	fmt.Fprintf(&b, "Channel: %s\n", c.Channel)
	fmt.Fprintf(&b, "Duration: %ds\n", c.Duration)
	if !c.UploadDate.IsZero() {
		fmt.Fprintf(&b, "Uploaded: %s\n", video.FormatDate(c.UploadDate))
	}
	lang := c.Language
	if lang == "" {
		lang = "unknown"
	}
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Link: %s\n", c.Link)
	fmt.Fprintf(&b, "Summary: %s\n\n", wrap(p.Summary, t.width, len("Summary: ")))
	_, err := io.WriteString(t.out, b.String())
	return err
}

func (t *terminal) ReadAnswer(ctx context.Context) (string, error) {
	fmt.Fprint(t.out, prompt)
	t.start.Do(func() { go t.scan() })

	select {
	case <-ctx.Done():
		fmt.Fprintln(t.out)
		return "", ctx.Err()
	case l, ok := <-t.lines:
		if !ok {
			l.err = io.EOF
		}
		if errors.Is(l.err, io.EOF) {
			fmt.Fprintln(t.out)
		}
		return l.text, l.err
	}
}

func (t *terminal) Invalid(input string) {
	fmt.Fprintln(t.out, "Invalid input. Try again.")
}

func (t *terminal) Saved(r feedback.Rating) {
	fmt.Fprintf(t.out, "Feedback saved (%s).\n", r)
}

func (t *terminal) Exhausted() {
	fmt.Fprintln(t.out, "\nNo more new videos to recommend. Come back later!")
}

// wrap breaks s on spaces so no line exceeds width runes. The first line
// is shorter by indent, which the caller has already printed. Continuation
// lines are not indented.
func wrap(s string, width, indent int) string {
	if width <= 0 {
		return s
	}
	words := strings.Fields(s)
	if len(words) == 0 {
		return s
	}

	var b strings.Builder
	col := indent
	for i, w := range words {
		n := len([]rune(w))
		if i > 0 {
			if col+1+n > width {
				b.WriteByte('\n')
				col = 0
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(w)
		col += n
	}
	return b.String()
}

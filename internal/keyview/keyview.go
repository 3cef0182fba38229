// ABOUTME: Interactive key viewer: polls decoded keys from a raw-mode source and renders them
// ABOUTME: Poll loop and render loop run under one errgroup; renders coalesce through a size-1 channel

package keyview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/runenames"

	"github.com/mauromedda/rawtty/internal/config"
	pilog "github.com/mauromedda/rawtty/internal/log"
	"github.com/mauromedda/rawtty/internal/trace"
	"github.com/mauromedda/rawtty/pkg/key"
	"github.com/mauromedda/rawtty/pkg/terminal"
	"github.com/mauromedda/rawtty/pkg/width"
)

// errPanicked is returned by Run when a loop goroutine panicked.
var errPanicked = errors.New("key viewer stopped after a panic")

// DefaultHistory is the number of keys kept on screen.
const DefaultHistory = 10

// Source is where keys come from: a raw-mode terminal session.
type Source interface {
	Read(p []byte) (int, error)
	Size() (width, height int, err error)
}

// Options configures a View.
type Options struct {
	Bindings  config.Bindings
	FollowUps int
	// Trace receives every key when tracing is on; nil disables the
	// toggle_trace action.
	Trace    *trace.Writer
	Tracing  bool
	Renderer *lipgloss.Renderer
	History  int
	// Guard, when set, is restored if a loop goroutine panics.
	Guard *terminal.Session
}

// entry is one key as shown in the history.
type entry struct {
	k      key.Key
	action config.Action
}

// View is the key viewer state.
type View struct {
	src    Source
	out    io.Writer
	reader *key.Reader
	opts   Options
	styles styles

	mu      sync.Mutex
	width   int
	height  int
	history []entry
	keys    int
	idle    int // idle polls since the last key
	polls   int
	blink   bool
	tracing bool

	renderCh chan struct{}
}

// New creates a View reading from src and drawing to out.
func New(src Source, out io.Writer, opts Options) *View {
	if opts.History <= 0 {
		opts.History = DefaultHistory
	}
	if opts.FollowUps <= 0 {
		opts.FollowUps = key.DefaultFollowUps
	}
	if opts.Renderer == nil {
		opts.Renderer = lipgloss.DefaultRenderer()
	}
	return &View{
		src:      src,
		out:      out,
		reader:   key.NewReader(src, key.WithFollowUps(opts.FollowUps)),
		opts:     opts,
		styles:   newStyles(opts.Renderer),
		tracing:  opts.Tracing && opts.Trace != nil,
		renderCh: make(chan struct{}, 1),
	}
}

// Resize records new terminal geometry and schedules a redraw. It is
// safe to call from a signal handler goroutine.
func (v *View) Resize(w, h int) {
	v.mu.Lock()
	v.width, v.height = w, h
	v.mu.Unlock()
	v.requestRender()
}

// Run polls keys until a quit key arrives, ctx is cancelled or a read
// fails. A quit key returns nil.
func (v *View) Run(ctx context.Context) error {
	if w, h, err := v.src.Size(); err == nil {
		v.Resize(w, h)
	} else {
		pilog.Warn("keyview: size unavailable: %v", err)
		v.Resize(80, 24)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(v.guarded(func() error {
		defer cancel()
		return v.pollLoop(gctx)
	}))
	g.Go(v.guarded(func() error {
		return v.renderLoop(gctx)
	}))

	err := g.Wait()
	v.write("\x1b[?25h\r\n")
	return err
}

// guarded wraps fn so a panic restores the terminal through Guard and
// surfaces as errPanicked.
func (v *View) guarded(fn func() error) func() error {
	if v.opts.Guard == nil {
		return fn
	}
	return func() (err error) {
		panicked := true
		defer func() {
			if panicked {
				err = errPanicked
			}
		}()
		defer terminal.RecoverGoroutine(v.opts.Guard)
		err = fn()
		panicked = false
		return err
	}
}

func (v *View) pollLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		k, ok, err := v.reader.Poll()
		if err != nil {
			return fmt.Errorf("reading keys: %w", err)
		}

		v.mu.Lock()
		v.polls++
		if !ok {
			v.idle++
			v.blink = !v.blink
			v.mu.Unlock()
			v.requestRender()
			continue
		}
		quit := v.handleLocked(k)
		n := v.keys
		v.mu.Unlock()

		v.requestRender()
		if quit {
			pilog.Debug("keyview: quit after %d keys", n)
			return nil
		}
	}
}

// handleLocked applies k to the view state and reports whether it quits.
func (v *View) handleLocked(k key.Key) bool {
	action, bound := v.opts.Bindings.Action(k)

	if v.tracing {
		if err := v.opts.Trace.Record(k, v.idle, string(action)); err != nil {
			pilog.Warn("keyview: tracing disabled: %v", err)
			v.tracing = false
		}
	}

	v.keys++
	v.idle = 0
	v.history = append(v.history, entry{k: k, action: action})
	if len(v.history) > v.opts.History {
		v.history = v.history[len(v.history)-v.opts.History:]
	}

	if !bound {
		return false
	}
	switch action {
	case config.ActionQuit:
		return true
	case config.ActionClear:
		v.history = v.history[:0]
	case config.ActionTrace:
		if v.opts.Trace != nil {
			v.tracing = !v.tracing
		}
	}
	return false
}

func (v *View) requestRender() {
	select {
	case v.renderCh <- struct{}{}:
	default:
	}
}

func (v *View) renderLoop(ctx context.Context) error {
	v.write("\x1b[?25l")
	for {
		select {
		case <-ctx.Done():
			// final frame so the last key stays visible
			v.render()
			return nil
		case <-v.renderCh:
			v.render()
		}
	}
}

func (v *View) render() {
	frame := v.Frame()
	var b strings.Builder
	b.WriteString("\x1b[?2026h\x1b[H\x1b[2J")
	b.WriteString(strings.Join(frame, "\r\n"))
	b.WriteString("\x1b[?2026l")
	v.write(b.String())
}

func (v *View) write(s string) {
	if _, err := io.WriteString(v.out, s); err != nil {
		pilog.Debug("keyview: write: %v", err)
	}
}

// Frame returns the screen lines for the current state, each fitted to
// the terminal width. Output uses "\r\n" because output processing is
// off in raw mode.
func (v *View) Frame() []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	w := max(v.width, 1)
	lines := make([]string, 0, len(v.history)+3)
	lines = append(lines, v.styles.title.Render("rawkeys")+"  "+v.styles.dim.Render(v.hintLocked()))
	lines = append(lines, "")
	for _, e := range v.history {
		lines = append(lines, v.entryLine(e))
	}
	lines = append(lines, v.statusLocked())

	if v.height > 0 && len(lines) > v.height {
		lines = append(lines[:1], lines[len(lines)-v.height+1:]...)
	}
	for i, l := range lines {
		lines[i] = width.Truncate(l, w)
	}
	return lines
}

func (v *View) hintLocked() string {
	var names []string
	for _, k := range v.opts.Bindings.Keys(config.ActionQuit) {
		names = append(names, k.String())
	}
	return "press " + strings.Join(names, " or ") + " to quit"
}

func (v *View) entryLine(e entry) string {
	name := Label(e.k)
	line := v.styles.key.Render(width.PadRight(name, 16)) + " " + v.styles.raw.Render(width.PadRight(HexBytes(e.k.Raw), 24))
	if desc := Describe(e.k); desc != "" {
		line += " " + v.styles.dim.Render(desc)
	}
	if e.action != "" {
		line += " " + v.styles.action.Render("["+string(e.action)+"]")
	}
	return line
}

func (v *View) statusLocked() string {
	marker := " "
	if v.blink {
		marker = "●"
	}
	tr := "off"
	if v.tracing {
		tr = "on"
	}
	return v.styles.status.Render(fmt.Sprintf("%s keys %d  idle %d  trace %s  %dx%d", marker, v.keys, v.idle, tr, v.width, v.height))
}

// Stats reports counters for the running view.
type Stats struct {
	Keys  int
	Polls int
	Idle  int
}

// Stats returns the current counters.
func (v *View) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Stats{Keys: v.keys, Polls: v.polls, Idle: v.idle}
}

// Label names a key for display; space and unnamed control bytes get
// readable names.
func Label(k key.Key) string {
	switch {
	case k.Type == key.KeyRune && k.Rune == ' ' && !k.Alt:
		return "Space"
	case k.Type == key.KeyUnknown && k.Raw != "":
		return "Unknown"
	}
	return k.String()
}

// Describe returns the Unicode name of a rune key, or "".
func Describe(k key.Key) string {
	if k.Type != key.KeyRune {
		return ""
	}
	return runenames.Name(k.Rune)
}

// HexBytes formats raw input as space-separated hex pairs.
func HexBytes(raw string) string {
	return fmt.Sprintf("% x", raw)
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-client/internal/notify"
)

// terminal renders the page hooks as lines of text. It implements every
// presentation port plus the notification surface.
type terminal struct {
	out    io.Writer
	errOut io.Writer
	in     *bufio.Reader
	yes    bool

	mu        sync.Mutex
	lastCount int
	counted   bool
}

func newTerminal(in io.Reader, out, errOut io.Writer, assumeYes bool) *terminal {
	return &terminal{
		out:    out,
		errOut: errOut,
		in:     bufio.NewReader(in),
		yes:    assumeYes,
	}
}

// SetCartCount prints only when the count changed since the last render.
func (t *terminal) SetCartCount(count int, visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.counted && t.lastCount == count {
		return
	}
	t.counted, t.lastCount = true, count

	if !visible {
		fmt.Fprintln(t.out, "Carrinho vazio")
		return
	}
	fmt.Fprintf(t.out, "Carrinho: %d item(s)\n", count)
}

func (t *terminal) SetAuthLinksVisible(visible bool) {
	if visible {
		t.println("Entrar | Cadastrar")
	}
}

func (t *terminal) SetUserMenuVisible(bool) {}

func (t *terminal) SetUserName(text string) {
	if text != "" {
		t.println(text)
	}
}

func (t *terminal) Navigate(location string) {
	t.println("-> " + location)
}

func (t *terminal) Confirm(prompt string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.yes {
		return true
	}

	fmt.Fprintf(t.out, "%s [s/N] ", prompt)
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "s", "sim", "y", "yes":
		return true
	default:
		return false
	}
}

func (t *terminal) SetFieldStyle(string, bool, bool) {}

func (t *terminal) SetFieldMessage(containerID, message string, visible bool) {
	if !visible {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.errOut, "%s: %s\n", strings.TrimSuffix(containerID, "-error"), message)
}

func (t *terminal) Append(n notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "[%s] %s\n", n.Severity, n.Message)
}

func (t *terminal) BeginExit(uuid.UUID) {}
func (t *terminal) Remove(uuid.UUID)    {}

func (t *terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, s)
}

// Package notify shows transient toast messages.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

const (
	VisibleFor = 5000 * time.Millisecond
	ExitFor    = 300 * time.Millisecond
)

var colors = map[Severity]string{
	Success: "#27ae60",
	Error:   "#e74c3c",
	Warning: "#f39c12",
	Info:    "#3498db",
}

// Color returns the background color of s; unknown severities use Info's.
func (s Severity) Color() string {
	if c, ok := colors[s]; ok {
		return c
	}
	return colors[Info]
}

type Notification struct {
	ID       uuid.UUID
	Message  string
	Severity Severity
	Color    string
}

// Surface is where notifications are drawn, typically the document body.
type Surface interface {
	Append(n Notification)
	BeginExit(id uuid.UUID)
	Remove(id uuid.UUID)
}

type timer interface {
	Stop() bool
}

// Presenter spawns one independent element per Show call and removes it after
// VisibleFor plus the ExitFor transition. There is no queue and no dedupe.
type Presenter struct {
	surface   Surface
	logger    *zap.Logger
	afterFunc func(d time.Duration, f func()) timer

	mu     sync.Mutex
	timers map[uuid.UUID]timer
	closed bool
}

type Option func(*Presenter)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Presenter) {
		p.logger = logger
	}
}

func New(surface Surface, opts ...Option) *Presenter {
	p := &Presenter{
		surface: surface,
		logger:  zap.NewNop(),
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		timers: make(map[uuid.UUID]timer),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Presenter) Show(message string, severity Severity) Notification {
	if _, ok := colors[severity]; !ok {
		p.logger.Debug("unknown severity, using info", zap.String("severity", string(severity)))
		severity = Info
	}

	n := Notification{
		ID:       uuid.New(),
		Message:  message,
		Severity: severity,
		Color:    severity.Color(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return n
	}

	p.surface.Append(n)
	p.timers[n.ID] = p.afterFunc(VisibleFor, func() { p.beginExit(n.ID) })

	return n
}

// Pending reports how many notifications are still on the surface.
func (p *Presenter) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timers)
}

// Close stops all pending timers. Notifications already drawn stay where they
// are; the host owns the surface after Close.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, t := range p.timers {
		t.Stop()
		delete(p.timers, id)
	}
	p.closed = true
}

func (p *Presenter) beginExit(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.timers[id]; !ok {
		return
	}

	p.surface.BeginExit(id)
	p.timers[id] = p.afterFunc(ExitFor, func() { p.remove(id) })
}

func (p *Presenter) remove(id uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.timers[id]; !ok {
		return
	}

	p.surface.Remove(id)
	delete(p.timers, id)
}

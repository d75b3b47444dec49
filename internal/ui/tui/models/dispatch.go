package models

import (
	"sync"

	"github.com/PizzaHomicide/sociallogin/internal/log"
	tea "github.com/charmbracelet/bubbletea"
)

// DispatchMsg carries a function to run on the bubbletea event loop.  AppModel runs it from Update, which is where all
// model state is owned.
type DispatchMsg struct {
	fn func()
}

// ProgramDispatcher posts functions onto a running bubbletea program, in the order they were posted.  Functions
// posted before a program is attached are held and sent once it is.
type ProgramDispatcher struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
	// sending is true while a goroutine is feeding pending into the program
	sending bool
}

func NewProgramDispatcher() *ProgramDispatcher {
	return &ProgramDispatcher{}
}

// Attach sets the program functions are sent to and flushes anything posted before
func (d *ProgramDispatcher) Attach(p *tea.Program) {
	d.mu.Lock()
	d.program = p
	start := d.startSending()
	d.mu.Unlock()

	if start {
		go d.deliver(p)
	}
}

// Post implements api.Dispatcher.  fn never runs on the calling goroutine.
func (d *ProgramDispatcher) Post(fn func()) {
	d.mu.Lock()
	d.pending = append(d.pending, fn)
	p := d.program
	start := d.startSending()
	d.mu.Unlock()

	switch {
	case p == nil:
		log.Debug("Holding dispatched function until the program is attached")
	case start:
		go d.deliver(p)
	}
}

// startSending reports whether the caller should start a delivery goroutine.  d.mu must be held.
func (d *ProgramDispatcher) startSending() bool {
	if d.program == nil || d.sending || len(d.pending) == 0 {
		return false
	}
	d.sending = true
	return true
}

// deliver sends pending functions one at a time.  Send blocks until the event loop reads the message, so this never
// runs inside Update.
func (d *ProgramDispatcher) deliver(p *tea.Program) {
	for {
		d.mu.Lock()
		if len(d.pending) == 0 {
			d.sending = false
			d.mu.Unlock()
			return
		}
		fn := d.pending[0]
		d.pending = d.pending[1:]
		d.mu.Unlock()

		p.Send(DispatchMsg{fn: fn})
	}
}

// inbox collects messages produced by dispatched functions so AppModel can process them after the function returns
type inbox struct {
	msgs []tea.Msg
}

func (i *inbox) push(msg tea.Msg) {
	i.msgs = append(i.msgs, msg)
}

func (i *inbox) drain() []tea.Msg {
	msgs := i.msgs
	i.msgs = nil
	return msgs
}

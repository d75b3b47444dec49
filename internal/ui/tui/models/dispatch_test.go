package models

import (
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dispatchRecorder runs dispatched functions from Update and quits once it has seen want of them
type dispatchRecorder struct {
	want     int
	ran      int
	inUpdate bool
}

func (m *dispatchRecorder) Init() tea.Cmd {
	return nil
}

func (m *dispatchRecorder) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	dispatched, ok := msg.(DispatchMsg)
	if !ok {
		return m, nil
	}
	m.inUpdate = true
	dispatched.fn()
	m.inUpdate = false

	m.ran++
	if m.ran == m.want {
		return m, tea.Quit
	}
	return m, nil
}

func (m *dispatchRecorder) View() string {
	return ""
}

func runProgram(t *testing.T, p *tea.Program) {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		_, err := p.Run()
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		p.Kill()
		t.Fatal("program did not receive every dispatched function")
	}
}

func TestProgramDispatcher(t *testing.T) {
	d := NewProgramDispatcher()
	model := &dispatchRecorder{want: 4}

	// order and fromUpdate are only touched on the event loop, and read after it stopped
	var order []int
	var fromUpdate []bool
	record := func(n int) func() {
		return func() {
			order = append(order, n)
			fromUpdate = append(fromUpdate, model.inUpdate)
		}
	}

	d.Post(record(1))
	d.Post(record(2))

	d.mu.Lock()
	assert.Len(t, d.pending, 2, "functions are held until a program is attached")
	d.mu.Unlock()

	p := tea.NewProgram(model,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	d.Attach(p)

	// Post must return before the function runs, even with the event loop busy
	release := make(chan struct{})
	returned := make(chan struct{})
	go func() {
		d.Post(func() {
			<-release
			record(3)()
		})
		d.Post(record(4))
		close(returned)
	}()

	go func() {
		select {
		case <-returned:
		case <-time.After(2 * time.Second):
			t.Error("Post ran the function on the calling goroutine")
		}
		close(release)
	}()

	runProgram(t, p)

	assert.Equal(t, []int{1, 2, 3, 4}, order)
	assert.Equal(t, []bool{true, true, true, true}, fromUpdate)
	assert.Equal(t, 4, model.ran)

	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Empty(t, d.pending)
}

// Package script runs sandboxed Lua code that generates test inputs.
//
// A generator is a Lua chunk returning a list. Each element is either a
// string (an input with no expectation) or a table {input=..., expect=...}
// where expect is a boolean or one of "accepted", "rejected",
// "inconclusive":
//
//	local out = {}
//	for n = 0, 4 do
//	  table.insert(out, {input = string.rep("a", n) .. string.rep("b", n), expect = true})
//	end
//	return out
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; the mutex serialises calls
// from Go. Use one State per goroutine for parallel generation.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// StateOption configures a State.
type StateOption func(*stateOptions)

type stateOptions struct {
	output io.Writer
}

// WithOutput sets where Lua print writes. The default discards output.
func WithOutput(w io.Writer) StateOption {
	return func(o *stateOptions) {
		o.output = w
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	o := stateOptions{output: io.Discard}
	for _, opt := range opts {
		opt(&o)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)
	installSandbox(L, o.output)

	return &State{L: L}
}

// Eval runs a chunk and returns its first return value, or LNil if it
// returns nothing. Execution stops when ctx is done.
func (s *State) Eval(ctx context.Context, name, code string) (lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil, ErrStateClosed
	}

	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return lua.LNil, fmt.Errorf("compiling %s: %w", name, err)
	}

	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	top := s.L.GetTop()
	s.L.Push(fn)
	if err := s.pcall(); err != nil {
		s.L.SetTop(top)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return lua.LNil, fmt.Errorf("%w: %s: %w", ErrExecutionTimeout, name, ctxErr)
		}
		return lua.LNil, fmt.Errorf("running %s: %w", name, err)
	}

	ret := s.L.Get(-1)
	s.L.SetTop(top)
	return ret, nil
}

// pcall calls the function on top of the stack with one result,
// converting Go panics into errors.
func (s *State) pcall() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return s.L.PCall(0, 1, nil)
}

// Close releases the Lua state. Further calls return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

// IsTimeout reports whether err came from an expired or cancelled context.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrExecutionTimeout)
}

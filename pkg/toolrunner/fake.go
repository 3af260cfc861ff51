package toolrunner

import (
	"context"
	"sync"
)

// FakeRunner records invocations instead of spawning processes. Handler, when
// set, decides the outcome of each call.
type FakeRunner struct {
	mu      sync.Mutex
	calls   []Invocation
	Handler func(inv Invocation) (*Result, error)
}

var _ Runner = &FakeRunner{}

func (f *FakeRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, inv)
	handler := f.Handler
	f.mu.Unlock()

	if handler != nil {
		return handler(inv)
	}
	return &Result{CommandLine: CommandLine(inv.Name, inv.Args...)}, nil
}

func (f *FakeRunner) Calls() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Invocation, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded invocations of one tool.
func (f *FakeRunner) CallsTo(name string) []Invocation {
	var out []Invocation
	for _, inv := range f.Calls() {
		if inv.Name == name {
			out = append(out, inv)
		}
	}
	return out
}

package fsm

import "time"

// Funcs adapts plain functions to Hooks. Nil functions are no-ops.
type Funcs struct {
	StartFn  func() error
	UpdateFn func() error
	EndFn    func() error
	Length   time.Duration
}

var _ Hooks = Funcs{}

func (f Funcs) OnStart() error {
	if f.StartFn == nil {
		return nil
	}
	return f.StartFn()
}

func (f Funcs) OnUpdate() error {
	if f.UpdateFn == nil {
		return nil
	}
	return f.UpdateFn()
}

func (f Funcs) OnEnd() error {
	if f.EndFn == nil {
		return nil
	}
	return f.EndFn()
}

func (f Funcs) Duration() time.Duration {
	return f.Length
}

// NewTimed returns a state that does nothing but last for d.
func NewTimed(name string, d time.Duration, opts ...Option) *Lifecycle {
	return New(Funcs{Length: d}, append([]Option{WithName(name)}, opts...)...)
}

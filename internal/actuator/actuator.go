// Package actuator maps gesture events onto light commands and carries them
// to the physical light. The transport is an injected capability so tests
// can substitute a fake.
package actuator

import (
	"context"
	"sync"
)

// Actuator is the capability the dispatcher drives: a light that accepts
// power and brightness commands and reports success or failure. No ordering
// or delivery guarantee is assumed; brightness commands carry absolute
// values so late arrivals stay harmless.
type Actuator interface {
	// Power turns the light on or off.
	Power(ctx context.Context, on bool) error

	// SetBrightness sets the light's brightness to an absolute level in
	// [1,100]. The device never accepts 0.
	SetBrightness(ctx context.Context, level int) error
}

// Command records one call made against a FakeActuator.
type Command struct {
	Name  string // "power" or "brightness"
	On    bool
	Level int
}

// FakeActuator is a test implementation that records every command.
type FakeActuator struct {
	mu       sync.Mutex
	commands []Command
	err      error
}

// NewFakeActuator creates an empty FakeActuator.
func NewFakeActuator() *FakeActuator {
	return &FakeActuator{}
}

// SetError makes every subsequent command fail with err.
func (f *FakeActuator) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Power records a power command.
func (f *FakeActuator) Power(ctx context.Context, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, Command{Name: "power", On: on})
	return f.err
}

// SetBrightness records a brightness command.
func (f *FakeActuator) SetBrightness(ctx context.Context, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, Command{Name: "brightness", Level: level})
	return f.err
}

// Commands returns a copy of the recorded command log.
func (f *FakeActuator) Commands() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Command(nil), f.commands...)
}

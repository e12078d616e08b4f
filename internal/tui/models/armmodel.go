package models

import (
	"context"
	"sync"
)

// InputMode is the vim-like editing mode of the command line.
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
)

func (m InputMode) String() string {
	if m == InputModeInsert {
		return "INSERT"
	}
	return "NORMAL"
}

// ArmModel is the TUI state shared between the update loop and background
// commands.
type ArmModel struct {
	mu sync.RWMutex

	inputMode InputMode
	busy      bool
	ready     bool
	showTable bool
	err       error

	ctx    context.Context
	cancel context.CancelFunc
}

func NewArmModel() *ArmModel {
	ctx, cancel := context.WithCancel(context.Background())
	return &ArmModel{
		inputMode: InputModeInsert,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (m *ArmModel) GetInputMode() InputMode {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inputMode
}

func (m *ArmModel) SetInputMode(mode InputMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputMode = mode
}

func (m *ArmModel) IsInInsertMode() bool {
	return m.GetInputMode() == InputModeInsert
}

// IsBusy reports whether a command is waiting for the arm.
func (m *ArmModel) IsBusy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.busy
}

func (m *ArmModel) SetBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = busy
}

func (m *ArmModel) IsReady() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

func (m *ArmModel) SetReady(ready bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = ready
}

func (m *ArmModel) ShowTable() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.showTable
}

func (m *ArmModel) ToggleTable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.showTable = !m.showTable
	return m.showTable
}

func (m *ArmModel) GetError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

func (m *ArmModel) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Context is cancelled by Cleanup; background tickers watch it.
func (m *ArmModel) Context() context.Context {
	return m.ctx
}

func (m *ArmModel) Cleanup() {
	if m.cancel != nil {
		m.cancel()
	}
}

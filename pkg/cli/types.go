package cli

import (
	"context"
	"errors"
	"fmt"

	"shea/pkg/common"
)

// ExecutionResult is what a handler hands back to main.
type ExecutionResult = common.ExecutionResult

type Flag struct {
	Name  string
	Short string
	Type  string // "bool", "string", "int"
	Desc  string
}

type Arg struct {
	Name     string
	Type     string
	Desc     string
	Optional bool
}

type Command struct {
	Name     string
	Desc     string
	Args     []*Arg
	Flags    []*Flag
	Subs     []*Command
	Parent   *Command
	Examples []string
}

type Topic struct {
	Name string
	Desc string
	Text string
}

// Invocation is a fully parsed command line.
type Invocation struct {
	Command *Command
	Args    map[string]string
	Flags   map[string]any
	Global  map[string]any
}

// Arg returns the positional argument name, or def if it was omitted.
func (inv *Invocation) Arg(name, def string) string {
	if v, ok := inv.Args[name]; ok {
		return v
	}
	return def
}

// Bool reports a boolean command or global flag.
func (inv *Invocation) Bool(name string) bool {
	if v, ok := inv.Flags[name].(bool); ok {
		return v
	}
	v, _ := inv.Global[name].(bool)
	return v
}

// String returns a string flag and whether it was given.
func (inv *Invocation) String(name string) (string, bool) {
	v, ok := inv.Flags[name].(string)
	return v, ok
}

// Int returns an int flag and whether it was given.
func (inv *Invocation) Int(name string) (int, bool) {
	v, ok := inv.Flags[name].(int)
	return v, ok
}

type Handler interface {
	Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, inv *Invocation) (*ExecutionResult, error)

func (f HandlerFunc) Execute(ctx context.Context, inv *Invocation) (*ExecutionResult, error) {
	return f(ctx, inv)
}

// UsageError is a malformed command line. main exits with status 2 for it.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Msg: fmt.Sprintf(format, args...)}
}

// IsUsage reports whether err is a command line error.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

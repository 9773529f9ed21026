package evaluator

import (
	"fmt"

	"github.com/funvibe/riscml/internal/ast"
)

// Object is a runtime value of the reference evaluator.
type Object interface {
	Inspect() string
}

// Integer wraps an int64.
type Integer struct {
	Value int64
}

func (i *Integer) Inspect() string { return fmt.Sprintf("%d", i.Value) }

// Boolean wraps a bool. Inspect uses the machine encoding so both backends
// print identically.
type Boolean struct {
	Value bool
}

func (b *Boolean) Inspect() string {
	if b.Value {
		return "1"
	}
	return "0"
}

// Function is a closure: a formal, a body, and the captured environment.
type Function struct {
	Formal string
	Body   ast.Expr
	Env    *Environment
}

func (f *Function) Inspect() string { return fmt.Sprintf("<fn %s>", f.Formal) }

// RecFunction is a closure that can see its own name.
type RecFunction struct {
	Name   string
	Formal string
	Body   ast.Expr
	Env    *Environment
}

func (f *RecFunction) Inspect() string { return fmt.Sprintf("<fn %s %s>", f.Name, f.Formal) }

// Environment maps names to values; closures share it by reference and it
// is extended copy-on-write, never mutated.
type Environment struct {
	store map[string]Object
	outer *Environment
}

func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{store: make(map[string]Object), outer: outer}
}

func (e *Environment) Get(name string) (Object, bool) {
	obj, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return obj, ok
}

func (e *Environment) Set(name string, val Object) {
	e.store[name] = val
}

package diagnostics

import (
	"fmt"

	"github.com/funvibe/riscml/internal/token"
)

// Phase represents the processing phase where an error occurred
type Phase string

const (
	PhaseLexer     Phase = "lexer"
	PhaseParser    Phase = "parser"
	PhaseTypecheck Phase = "typecheck"
	PhaseCodegen   Phase = "codegen"
	PhaseRuntime   Phase = "runtime"
)

type ErrorCode string

const (
	// Lexer Errors
	ErrL001 ErrorCode = "L001" // Unexpected character
	ErrL002 ErrorCode = "L002" // Unterminated block comment

	// Parser Errors
	ErrP001 ErrorCode = "P001" // Unexpected token
	ErrP002 ErrorCode = "P002" // Could not parse as integer

	// Type Errors
	ErrT001 ErrorCode = "T001" // Type mismatch
	ErrT002 ErrorCode = "T002" // Infinite type
	ErrT003 ErrorCode = "T003" // Polymorphic (underconstrained) type
	ErrT004 ErrorCode = "T004" // Ambiguous type
	ErrT005 ErrorCode = "T005" // Undefined variable

	// Runtime Errors
	ErrR000 ErrorCode = "R000" // Generic runtime error
	ErrR001 ErrorCode = "R001" // Undefined register
	ErrR002 ErrorCode = "R002" // Division by zero
	ErrR003 ErrorCode = "R003" // Memory access out of bounds
	ErrR004 ErrorCode = "R004" // Malformed closure
)

var errorTemplates = map[ErrorCode]string{
	ErrL001: "unexpected character: '%s'",
	ErrL002: "unterminated block comment",
	ErrP001: "unexpected token: expected '%s', but got '%s'",
	ErrP002: "could not parse '%s' as an integer",
	ErrT001: "type mismatch: %s vs %s",
	ErrT002: "infinite type: %s occurs in %s",
	ErrT003: "polymorphic type: '%s' is underconstrained",
	ErrT004: "ambiguous type for '%s': %s vs %s",
	ErrT005: "undefined variable: '%s'",
	ErrR000: "runtime error: %s",
	ErrR001: "undefined register: '%s'",
	ErrR002: "division by zero",
	ErrR003: "memory access out of bounds: %d",
	ErrR004: "malformed closure in register '%s'",
}

type DiagnosticError struct {
	Code  ErrorCode
	Phase Phase
	Args  []interface{}
	Token token.Token
}

func (e *DiagnosticError) Error() string {
	template, ok := errorTemplates[e.Code]
	if !ok {
		return fmt.Sprintf("unknown error code: %s", e.Code)
	}

	message := fmt.Sprintf(template, e.Args...)

	phaseStr := ""
	if e.Phase != "" {
		phaseStr = fmt.Sprintf("[%s] ", e.Phase)
	}

	if e.Token.Line > 0 {
		return fmt.Sprintf("%serror at %d:%d [%s]: %s", phaseStr, e.Token.Line, e.Token.Column, e.Code, message)
	}
	return fmt.Sprintf("%serror [%s]: %s", phaseStr, e.Code, message)
}

// NewError creates an error with just code and token
func NewError(code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:  code,
		Token: tok,
		Args:  args,
	}
}

// NewPhaseError creates an error with phase information
func NewPhaseError(phase Phase, code ErrorCode, tok token.Token, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{
		Code:  code,
		Phase: phase,
		Token: tok,
		Args:  args,
	}
}

// WrapError wraps an existing error with phase information
func WrapError(phase Phase, tok token.Token, err error) *DiagnosticError {
	if de, ok := err.(*DiagnosticError); ok {
		if de.Phase == "" {
			de.Phase = phase
		}
		if de.Token.Line == 0 && tok.Line > 0 {
			de.Token = tok
		}
		return de
	}
	return NewPhaseError(phase, ErrR000, tok, err.Error())
}

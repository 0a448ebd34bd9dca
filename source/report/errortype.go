package report

import (
	"github.com/joomcode/errorx"

	"github.com/tern-lang/tern/source/token"
)

// Every user-facing error belongs to one of these kinds. The kind is what callers branch on;
// the error identifier is what the user sees and what the tests check.
var (
	Namespace = errorx.NewNamespace("tern")

	TypeMismatch      = Namespace.NewType("type_mismatch")
	ArityMismatch     = Namespace.NewType("arity_mismatch")
	UndefinedLabel    = Namespace.NewType("undefined_label")
	AmbiguousOverload = Namespace.NewType("ambiguous_overload")
	UndefinedName     = Namespace.NewType("undefined_name")
	Redefinition      = Namespace.NewType("redefinition")
	Syntax            = Namespace.NewType("syntax")
	Storage           = Namespace.NewType("storage")
)

// Defects are not the user's fault and are never put on the error list. If one of these
// reaches the driver, the driver says so and stops.
var (
	Internal = Namespace.NewSubNamespace("internal")

	InvariantViolation = Internal.NewType("invariant_violation")
)

var (
	ErrorIdProperty = errorx.RegisterPrintableProperty("errorId")
	TokenProperty   = errorx.RegisterProperty("token")
)

// The 'error' type as the user sees it.
type Error struct {
	ErrorId string
	Message string
	Args    []any
	Token   *token.Token
	Err     *errorx.Error
}

func (e *Error) Kind() *errorx.Type {
	return e.Err.Type()
}

type Errors []*Error

func Defect(format string, args ...any) *errorx.Error {
	return InvariantViolation.New(format, args...)
}

func IsDefect(err error) bool {
	return err != nil && errorx.IsOfType(err, InvariantViolation)
}

// Returns the error identifier attached by Throw, or "" if the error didn't come from Throw.
func IdOf(err error) string {
	id, ok := errorx.ExtractProperty(err, ErrorIdProperty)
	if !ok {
		return ""
	}
	return id.(string)
}

func TokenOf(err error) (*token.Token, bool) {
	tok, ok := errorx.ExtractProperty(err, TokenProperty)
	if !ok {
		return nil, false
	}
	return tok.(*token.Token), true
}

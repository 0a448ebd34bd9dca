package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joomcode/errorx"

	"github.com/tern-lang/tern/source/text"
	"github.com/tern-lang/tern/source/token"
)

type ErrorCreator struct {
	Kind        *errorx.Type
	Message     func(tok *token.Token, args ...any) string
	Explanation func(errors Errors, pos int, tok *token.Token, args ...any) string
}

// A map from error identifiers to functions that supply the corresponding error messages and explanations.
//
// Errors in the map are in alphabetical order of their identifers.
//
// Major categories are comp, lex, parse, and store.
//
// Two otherwise identical errors thrown in different places in the Go code must be assigned
// different identifiers, if only by suffixing /a, /b, etc to the identifier.

var ErrorCreatorMap = map[string]ErrorCreator{

	"comp/arity": {
		Kind: ArityMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v expects %v but was given %v", emph(args[0]), args[1], args[2])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Built-in forms with a fixed number of operands must be given exactly that number."
		},
	},

	"comp/call/types": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("no overload of %v accepts arguments of type %v", emph(args[0]), args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A call resolves to the overload whose parameter types are exactly the types of the " +
				"arguments, in order. A variadic overload also accepts any further arguments after its " +
				"required ones. None of the overloads of " + emph(args[0]) + " fits."
		},
	},

	"comp/call/void": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("argument %v of %v has no value", args[1], emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Forms such as " + emph("do") + " with nothing in it, " + emph("var") + ", " + emph("goto") +
				" and " + emph("return") + " are of type " + emph("void") + ". Nothing can be passed that way, not " +
				"even as one of the extra arguments of a variadic function."
		},
	},

	"comp/core/unknown": {
		Kind: UndefinedName,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("there is no built-in form called %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Qualifying a name with " + emph("core.") + " asks for the built-in form of that name, " +
				"bypassing any functions you may have defined with the same name."
		},
	},

	"comp/def/attr": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("unknown function attribute %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The attributes a function can have are " + emph("inline") + ", " + emph("cto") +
				" and " + emph("noserialise") + "."
		},
	},

	"comp/def/attrs": {
		Kind: AmbiguousOverload,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v redeclared with the same signature but different attributes", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Two functions with the same name and signature are the same function, so they must " +
				"agree about attributes such as " + emph("inline") + " that can't be used to tell " +
				"overloads apart."
		},
	},

	"comp/def/form": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "malformed function definition"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A function definition looks like " + emph("(def name (fn linkage return-type (params ...) body ...))") +
				", optionally with " + emph("(attr ...)") + " after the linkage."
		},
	},

	"comp/def/linkage": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("unknown linkage %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The linkage of a function must be one of " + emph("intern") + ", " + emph("extern") +
				" or " + emph("extern-c") + "."
		},
	},

	"comp/def/linkage/mismatch": {
		Kind: Redefinition,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v was declared %v but is now given as %v", emph(args[0]), emph(args[1]), emph(args[2]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The linkage of a function decides the name it has in the object file, so every declaration " +
				"and the definition of a function must agree on it."
		},
	},

	"comp/def/param": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "malformed parameter"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Each parameter is a list of a name and a type, e.g. " + emph("(n int32)") + "."
		},
	},

	"comp/def/param/type": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("parameter %v can't be of type %v", emph(args[0]), emph(args[1]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Parameters need a concrete storage layout, and " + emph("retval") + " may only be used on a return type."
		},
	},

	"comp/def/redefined": {
		Kind: Redefinition,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v already has a body with this signature", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "You can declare a function as often as you like, but you can only define it once."
		},
	},

	"comp/def/retval": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("can't return %v by way of a caller-supplied slot", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A " + emph("retval") + " return type needs a type with a concrete storage layout to write into."
		},
	},

	"comp/def/return-overload": {
		Kind: AmbiguousOverload,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v already has an overload taking %v, returning %v", emph(args[0]), args[1], emph(args[2]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Overloads are told apart by their parameter types alone, so two functions with the same " +
				"name and parameters can't differ only in what they return."
		},
	},

	"comp/def/symbol": {
		Kind: Redefinition,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("the symbol %v for %v is already in use", emph(args[1]), emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Every function in the module needs its own symbol. Functions with " + emph("extern-c") +
				" linkage aren't mangled, so they can't be overloaded."
		},
	},

	"comp/def/top": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "expected a definition at the top level"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Every top-level form must be a " + emph("def") + "."
		},
	},

	"comp/def/varargs": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v must be the last parameter", emph("..."))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The variadic marker says that any further arguments are accepted, so nothing can come after it."
		},
	},

	"comp/deref/type": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("can't dereference a value of type %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Only pointers to types with a concrete storage layout can be dereferenced."
		},
	},

	"comp/form/empty": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "empty form"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A form must start with the name of what it does."
		},
	},

	"comp/form/head": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "the head of a form must be a symbol"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Tern looks up the first element of a list to see what to do with the rest of it, so the " +
				"first element must be a name."
		},
	},

	"comp/goto/undefined": {
		Kind: UndefinedLabel,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v jumps to label %v which is never defined in %v", emph("goto"), emph(args[0]), emph(args[1]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A " + emph("goto") + " can jump forward to a label defined later in the same function, " +
				"but by the end of the function the label must exist."
		},
	},

	"comp/int/range": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("integer literal %v doesn't fit in %v", emph(args[0]), emph("int32"))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Integer literals are of type " + emph("int32") + "."
		},
	},

	"comp/label/name": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v needs a symbol as the name of a label", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Labels are named by symbols, e.g. " + emph("(label done)") + "."
		},
	},

	"comp/label/redefined": {
		Kind: Redefinition,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("label %v is already defined in this function", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Label names must be unique within a function."
		},
	},

	"comp/namespace": {
		Kind: UndefinedName,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("unknown namespace %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The only namespace the compiler knows about is " + emph("core") + ", where the built-in forms live."
		},
	},

	"comp/ptr/arity": {
		Kind: ArityMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v needs a pointer and at least one offset", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Pointer arithmetic looks like " + emph("(p+ ptr 3)") + " or " + emph("(p+ ptr i j k)") + "."
		},
	},

	"comp/ptr/head": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("first operand of %v is of type %v, which is not a pointer", emph(args[0]), emph(args[1]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Pointer arithmetic needs a pointer, or an array, which is treated as a pointer to its first element."
		},
	},

	"comp/ptr/offset": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("offset %v of %v is of type %v, which is not an integer type", args[1], emph(args[0]), emph(args[2]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Pointers are offset by a whole number of elements, so the offsets must be integers."
		},
	},

	"comp/ptr/pointee": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("can't do arithmetic on %v because its elements have no size", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Pointer arithmetic steps by the size of the thing pointed to, so that thing must have a storage layout."
		},
	},

	"comp/return/type": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("returning a value of type %v from a function that returns %v", emph(args[0]), emph(args[1]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The value given to " + emph("return") + " must be exactly of the function's return type."
		},
	},

	"comp/return/void": {
		Kind: ArityMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v without a value in a function that returns %v", emph("return"), emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Only functions returning " + emph("void") + " can " + emph("return") + " without a value."
		},
	},

	"comp/storage": {
		Kind: Storage,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v", args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The compiler needed to put a value somewhere in memory and couldn't work out how big it is."
		},
	},

	"comp/store": {
		Kind: Storage,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("couldn't save the metadata of %v: %v", emph(args[0]), args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The function compiled, but its signature couldn't be written to the metadata store, so " +
				"other compilation units won't be able to see it."
		},
	},

	"comp/type/array": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("bad array size %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "An array type looks like " + emph("(array-of 10 int32)") + "."
		},
	},

	"comp/type/unknown": {
		Kind: UndefinedName,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("unknown type %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The types are the integer types, " + emph("bool") + ", " + emph("void") + ", and " +
				"anything made from them with " + emph("p") + ", " + emph("array-of") + " and " + emph("retval") + "."
		},
	},

	"comp/undefined": {
		Kind: UndefinedName,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("%v is not a variable, function or built-in form", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The name isn't declared anywhere the compiler can see from here."
		},
	},

	"comp/var/init": {
		Kind: TypeMismatch,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("initializing variable %v of type %v with a value of type %v", emph(args[0]), emph(args[1]), emph(args[2]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "The initial value of a variable must be exactly of the variable's type."
		},
	},

	"comp/var/name": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "a variable needs a symbol as its name"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A local variable is declared like " + emph("(var n int32 0)") + "."
		},
	},

	"lex/int": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("malformed integer literal %v", emph(args[0]))
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Integer literals are decimal, optionally with a leading minus sign."
		},
	},

	"parse/eof": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "unexpected end of input: unclosed parenthesis"
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Every " + emph("(") + " needs a matching " + emph(")") + "." + blame(errors, pos, "lex/int")
		},
	},

	"parse/rparen": {
		Kind: Syntax,
		Message: func(tok *token.Token, args ...any) string {
			return "unexpected " + emph(")")
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "There are more closing parentheses than opening ones."
		},
	},

	"store/open": {
		Kind: Storage,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("couldn't open the metadata store: %v", args[0])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "Check TERN_DB_DRIVER and TERN_DB_DSN."
		},
	},

	"store/signature": {
		Kind: Storage,
		Message: func(tok *token.Token, args ...any) string {
			return fmt.Sprintf("stored signature of %v can't be read: %v", emph(args[0]), args[1])
		},
		Explanation: func(errors Errors, pos int, tok *token.Token, args ...any) string {
			return "A row in the metadata store has a signature that the reader doesn't understand, so the " +
				"function it describes can't be imported."
		},
	},
}

// Makes the error, appends it to the list, and returns the list and the error.
func Throw(errorId string, errors Errors, tok *token.Token, args ...any) (Errors, *errorx.Error) {
	e := CreateErr(errorId, tok, args...)
	return append(errors, e), e.Err
}

func CreateErr(errorId string, tok *token.Token, args ...any) *Error {
	creator, ok := ErrorCreatorMap[errorId]
	if !ok {
		// An unknown identifier is our bug, not the user's, but it still has to go somewhere.
		creator = ErrorCreator{Kind: Syntax, Message: func(tok *token.Token, args ...any) string {
			return "unregistered error " + emph(errorId)
		}}
	}
	msg := creator.Message(tok, args...)
	err := creator.Kind.New("%s", msg).
		WithProperty(ErrorIdProperty, errorId).
		WithProperty(TokenProperty, tok)
	return &Error{ErrorId: errorId, Message: msg, Args: args, Token: tok, Err: err}
}

func GetList(errors Errors) string {
	result := ""
	for i, e := range errors {
		result = result + "\n" + text.Red("["+strconv.Itoa(i)+"] ") + describeError(e)
	}
	return result + "\n"
}

func describeError(e *Error) string {
	if e.Token == nil {
		return text.Red("Error") + ": " + e.Message + "."
	}
	return text.Red("Error") + ": " + e.Message + text.DescribePos(e.Token) + "."
}

// Supplies the fuller explanation of the error at position pos in the list, for the REPL's 'why'.
func Explain(errors Errors, pos int) string {
	if pos < 0 || pos >= len(errors) {
		return "there is no error number " + strconv.Itoa(pos)
	}
	e := errors[pos]
	creator, ok := ErrorCreatorMap[e.ErrorId]
	if !ok || creator.Explanation == nil {
		return "no further explanation is available"
	}
	return creator.Explanation(errors, pos, e.Token, e.Args...)
}

func blame(errors Errors, pos int, args ...string) string {
	if pos == 0 {
		return ""
	}
	for _, v := range args {
		if errors[pos-1].ErrorId == v {
			very := ""
			if errors[pos].Token != nil && errors[pos-1].Token != nil &&
				(errors[pos].Token.Line-errors[pos-1].Token.Line) <= 1 {
				very = "very "
			}
			return "\n\nIn this case the problem is " + very + "likely a knock-on effect of the previous error ([" +
				strconv.Itoa(pos-1) + "] " + errors[pos-1].Message + ".)"
		}
	}
	return ""
}

func emph(s any) string {
	if t, ok := s.(string); ok {
		s = strings.TrimSpace(t)
	}
	return fmt.Sprintf("'%v'", s)
}

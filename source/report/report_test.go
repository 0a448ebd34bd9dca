package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/tern-lang/tern/source/token"
)

func TestThrow(t *testing.T) {
	tok := &token.Token{Type: token.SYMBOL, Literal: "b", Line: 3, Source: "test"}
	errs, err := Throw("comp/ptr/head", Errors{}, tok, "p+", "int32")
	if len(errs) != 1 || errs[0].Kind() != TypeMismatch {
		t.Fatalf("Test failed | Wanted : one type mismatch.")
	}
	if !strings.Contains(errs[0].Message, "int32") {
		t.Fatalf("Test failed | Wanted : the message to name the type | Got : %s.", errs[0].Message)
	}
	if IdOf(err) != "comp/ptr/head" {
		t.Fatalf("Test failed | Wanted : comp/ptr/head | Got : %s.", IdOf(err))
	}
	if got, ok := TokenOf(err); !ok || got != tok {
		t.Fatalf("Test failed | Wanted : the token to be attached.")
	}
	if IsDefect(err) {
		t.Fatalf("Test failed | Wanted : a user error not to be a defect.")
	}
}

func TestDefect(t *testing.T) {
	err := Defect("no value in result of type %v", "int32")
	if !IsDefect(err) || IdOf(err) != "" {
		t.Fatalf("Test failed | Wanted : a defect without an error id.")
	}
	if IsDefect(errors.New("plain")) || IsDefect(nil) {
		t.Fatalf("Test failed | Wanted : only invariant violations to be defects.")
	}
}

func TestEveryErrorHasAKindAndMessage(t *testing.T) {
	tok := &token.Token{Type: token.SYMBOL, Literal: "x", Line: 1, Source: "test"}
	for id, creator := range ErrorCreatorMap {
		if creator.Kind == nil {
			t.Fatalf("Test failed | Wanted : %s to have a kind.", id)
		}
		e := CreateErr(id, tok, "a", "b", "c")
		if e.Message == "" || IdOf(e.Err) != id {
			t.Fatalf("Test failed | Wanted : %s to have a message.", id)
		}
		if Explain(Errors{e}, 0) == "" {
			t.Fatalf("Test failed | Wanted : %s to be explained.", id)
		}
	}
}

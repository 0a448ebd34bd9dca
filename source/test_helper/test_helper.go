package test_helper

import (
	"os"
	"testing"

	"github.com/tern-lang/tern/source/compiler"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/text"
)

// Auxiliary types and functions for testing the reader and compiler.

type TestItem struct {
	Input string
	Want  string
}

// Each test gets a fresh compiler, which has first compiled the named file in the test-files
// directory of the package being tested, if there is one.
func RunTest(t *testing.T, filename string, tests []TestItem, F func(cp *compiler.Compiler, s string) (string, error)) {
	wd, _ := os.Getwd() // The working directory is the directory containing the package being tested.
	var prelude []byte
	if filename != "" {
		var err error
		prelude, err = os.ReadFile(wd + "/test-files/" + filename)
		if err != nil {
			t.Fatalf("Couldn't read test file %s : %v", filename, err)
		}
	}
	for _, test := range tests {
		if settings.SHOW_TESTS {
			println(text.BULLET + "Running test " + text.Emph(test.Input))
		}
		cp := compiler.New()
		if filename != "" {
			if err := cp.CompileSource(filename, string(prelude)); err != nil || cp.ErrorsExist() {
				t.Fatalf("There were errors compiling the test file : \n" + cp.ReturnErrors())
			}
		}
		got, e := F(cp, test.Input)
		if e != nil {
			println(text.Red(test.Input))
			println("There was an internal error compiling the input: \n" + e.Error() + "\n")
		}
		if !(test.Want == got) {
			t.Fatalf(`Test failed with input %s | Wanted : %s | Got : %s.`, test.Input, test.Want, got)
		}
	}
}

// For tests that don't need a compiler, e.g. of the reader.
func RunTransformTest(t *testing.T, tests []TestItem, F func(s string) (string, error)) {
	for _, test := range tests {
		if settings.SHOW_TESTS {
			println(text.BULLET + "Running test " + text.Emph(test.Input))
		}
		got, e := F(test.Input)
		if e != nil {
			got = e.Error()
		}
		if !(test.Want == got) {
			t.Fatalf(`Test failed with input %s | Wanted : %s | Got : %s.`, test.Input, test.Want, got)
		}
	}
}

//
// Tern version 0.1.3
//

package main

import (
	"fmt"
	"os"

	"github.com/tern-lang/tern/source/compiler"
	"github.com/tern-lang/tern/source/repl"
	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/store"
	"github.com/tern-lang/tern/source/text"
)

// Exit statuses: 1 if the user's code has errors, 2 if the compiler has a bug.
func main() {
	verb := "repl"
	if len(os.Args) > 1 {
		verb = os.Args[1]
	}
	switch verb {
	case "help", "-h", "--help":
		fmt.Print(text.HELP)
		return
	case "version", "-v", "--version":
		fmt.Println("Tern version " + text.VERSION)
		return
	case "repl", "compile":
	default:
		fmt.Println(text.Red("Error") + ": unknown command " + text.Emph(verb) + ".")
		fmt.Print(text.HELP)
		os.Exit(1)
	}

	cp, closeStore := makeCompiler()
	defer closeStore()

	if verb == "repl" {
		fmt.Print(text.Logo())
		if err := repl.Start(cp, os.Stdout); err != nil {
			fail(err)
		}
		return
	}

	if len(os.Args) < 3 {
		fmt.Println(text.Red("Error") + ": " + text.Emph("compile") + " needs the name of a file.")
		os.Exit(1)
	}
	filename := os.Args[2]
	code, err := os.ReadFile(filename)
	if err != nil {
		fmt.Println(text.Red("Error") + ": " + err.Error() + ".")
		os.Exit(1)
	}
	if err := cp.CompileSource(filename, string(code)); err != nil {
		fail(err)
	}
	if cp.ErrorsExist() {
		fmt.Println(cp.ReturnErrors())
		closeStore()
		os.Exit(1)
	}
	fmt.Print(cp.Module.String())
}

func makeCompiler() (*compiler.Compiler, func()) {
	cfg := settings.Load()
	if !cfg.StoreEnabled() {
		return compiler.New(), func() {}
	}
	st, err := store.Open(cfg.DbDriver, cfg.DbDSN)
	if err != nil {
		fmt.Println(text.Red("Error") + ": " + report.CreateErr("store/open", nil, err.Error()).Message + ".")
		os.Exit(1)
	}
	cp, err := compiler.NewWithStore(st)
	if err != nil {
		fmt.Println(cp.ReturnErrors())
		st.Close()
		os.Exit(1)
	}
	if cp.ErrorsExist() {
		fmt.Println(cp.ReturnErrors())
		cp.ClearErrors()
	}
	return cp, func() { st.Close() }
}

func fail(err error) {
	fmt.Println(text.Red("Internal error") + ": " + err.Error())
	os.Exit(2)
}

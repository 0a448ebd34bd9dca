package repl

import (
	"io"
	"strconv"
	"strings"

	"github.com/lmorg/readline"

	"github.com/tern-lang/tern/source/compiler"
	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/store"
	"github.com/tern-lang/tern/source/text"
)

const INDENT_PROMPT = "  "

// Reads definitions a form at a time and compiles them into the one module. Besides Tern, the
// REPL understands a few commands of its own; see REPL_HELP.
func Start(cp *compiler.Compiler, out io.Writer) error {
	rline := readline.NewInstance()
	lastErrors := report.Errors{}
	for {
		input := ""
		depth := 0
		for {
			if input == "" {
				rline.SetPrompt(text.PROMPT)
			} else {
				rline.SetPrompt(INDENT_PROMPT)
			}
			line, err := rline.Readline()
			if err != nil {
				return nil
			}
			input = input + line + "\n"
			depth = depth + parenDepth(line)
			if depth <= 0 {
				break
			}
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		words := strings.Fields(input)
		switch words[0] {
		case "quit":
			return nil
		case "help":
			io.WriteString(out, REPL_HELP)
			continue
		case "ir":
			io.WriteString(out, cp.Module.String()+"\n")
			continue
		case "errors":
			if len(lastErrors) == 0 {
				io.WriteString(out, text.Green("ok")+"\n")
			} else {
				io.WriteString(out, report.GetList(lastErrors)+"\n")
			}
			continue
		case "drivers":
			io.WriteString(out, store.GetDriverOptions()+"\n")
			continue
		case "why":
			pos := 0
			if len(words) > 1 {
				n, err := strconv.Atoi(words[1])
				if err != nil {
					io.WriteString(out, text.Red("Error")+": "+text.Emph("why")+" takes the number of an error.\n")
					continue
				}
				pos = n
			}
			io.WriteString(out, report.Explain(lastErrors, pos)+"\n")
			continue
		}

		if err := cp.CompileSource("REPL input", input); err != nil {
			return err
		}
		if cp.ErrorsExist() {
			lastErrors = cp.Errors
			io.WriteString(out, cp.ReturnErrors()+"\n")
			cp.ClearErrors()
			continue
		}
		lastErrors = report.Errors{}
		io.WriteString(out, text.Green("ok")+"\n")
	}
}

// How many more parentheses the line opens than it closes. Comments don't count.
func parenDepth(line string) int {
	depth := 0
	for _, ch := range line {
		switch ch {
		case ';':
			return depth
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

const REPL_HELP = "\nEnter a definition to compile it, or one of:\n\n" +
	text.BULLET + "ir        shows the LLVM IR of everything compiled so far\n" +
	text.BULLET + "errors    lists the errors from the last thing you entered\n" +
	text.BULLET + "why <n>   explains error number n\n" +
	text.BULLET + "drivers   lists the SQL drivers the metadata store can use\n" +
	text.BULLET + "quit      leaves the REPL\n\n"

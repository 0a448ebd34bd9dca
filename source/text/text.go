package text

// This consists of a bunch of text utilities to help in generating pretty and meaningful
// help messages, error messages, etc.

import (
	"strconv"
	"strings"

	"github.com/tern-lang/tern/source/token"
)

const (
	VERSION        = "0.1.3"
	BULLET         = "  ▪ "
	BULLET_SPACING = "    " // I.e. whitespace the same width as BULLET.
	GOOD_BULLET    = "\033[32m  ▪ \033[0m"
	BROKEN         = "\033[31m  ✖ \033[0m"
	PROMPT         = "→ "
)

const (
	RESET  = "\033[0m"
	RED    = "\033[31m"
	GREEN  = "\033[32m"
	YELLOW = "\033[33m"
	CYAN   = "\033[36m"
)

func Cyan(s string) string {
	return CYAN + s + RESET
}

func Emph(s string) string {
	return "'" + s + "'"
}

func Red(s string) string {
	return RED + s + RESET
}

func Green(s string) string {
	return GREEN + s + RESET
}

func Yellow(s string) string {
	return YELLOW + s + RESET
}

func Logo() string {
	var padding string
	if len(VERSION)%2 == 1 {
		padding = ","
	}
	titleText := " Tern" + padding + " version " + VERSION + " "
	leftMargin := "  "
	bar := strings.Repeat("═", len(titleText)/2)
	wing := Cyan("≻")
	logoString := "\n" +
		leftMargin + "╔" + bar + wing + bar + "╗\n" +
		leftMargin + "║" + titleText + "║\n" +
		leftMargin + "╚" + bar + wing + bar + "╝\n\n"
	return logoString
}

const HELP = "\nUsage: tern [-v | --version] [-h | --help]\n" +
	"            <command> [args]\n\n" +
	"Commands are:\n\n" +
	"  repl            Starts the Tern REPL. This is also what happens if you give no command.\n" +
	"  compile <file>  Compiles a Tern source file and writes the LLVM IR to standard output.\n\n" +
	"The metadata store is configured with the environment variables TERN_DB_DRIVER and TERN_DB_DSN.\n\n"

func DescribePos(token *token.Token) string {
	prettySource := token.Source
	if prettySource == "" {
		return ""
	}
	if prettySource != "REPL input" {
		prettySource = "'" + prettySource + "'"
	}
	if token.Line > 0 {
		result := strconv.Itoa(token.Line) + ":" + strconv.Itoa(token.ChStart)
		if token.ChStart != token.ChEnd {
			result = result + "-" + strconv.Itoa(token.ChEnd)
		}
		return " at line " + result + " of " + prettySource
	}
	return " in " + prettySource
}

// Describes a token for the purposes of error messages etc.
func DescribeTok(tok *token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.LPAREN, token.RPAREN:
		return "parenthesis " + Emph(tok.Literal)
	}
	return Emph(tok.Literal)
}

// Pluralizes a noun according to a count, for the benefit of error messages.
func Plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

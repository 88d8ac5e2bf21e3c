// Package skeleton reduces source text to a structure-only skeleton.
// Class and interface openings, one-line member and function signatures,
// imports, exports and documentation comments survive; statement bodies,
// conditionals and in-body logic are removed.
//
// The reducer is a line classifier over brace-delimited C-family syntax,
// not a parser. It never fails: malformed input (unbalanced braces,
// multi-line signatures, braces inside string literals) degrades to
// partial output instead of returning an error.
package skeleton

import (
	"regexp"
	"strings"
)

const memberIndent = "  "

// scanMode is the exclusive per-line mode of the scanner. Exactly one
// mode is active for any given line; the type-block flag composes with
// all of them because a skipped method body returns to its class scope.
type scanMode int

const (
	modeNormal scanMode = iota
	modeDocComment
	modeSkipBody
)

type scanner struct {
	mode        scanMode
	skipDepth   int
	inTypeBlock bool
	out         []string
}

var (
	conditionalRe = regexp.MustCompile(`\bif\s*\(.*\)\s*\{`)
	typeDeclRe    = regexp.MustCompile(`^(?:export\s+)?(?:abstract\s+)?(?:class|interface)\s+[A-Za-z_$][\w$]*`)
	memberRe      = regexp.MustCompile(`^(?:async\s+)?(?:(?:get|set)\s+)?[A-Za-z_$][\w$]*\s*\(`)
	funcDeclRe    = regexp.MustCompile(`^(?:export\s+)?(?:async\s+)?function\s+[A-Za-z_$][\w$]*\s*\(`)
	arrowDeclRe   = regexp.MustCompile(`^(?:export\s+)?(?:const|let|var)\s+[A-Za-z_$][\w$]*\s*=\s*(?:async\s+)?\([^)]*\)\s*=>\s*(?:\{\}|\{)?\s*$`)
	arrowTailRe   = regexp.MustCompile(`\s*=>\s*$`)
)

// rule pairs a predicate with the action taken when it matches. Rules
// are evaluated in order and the first match consumes the line, so the
// table below is the priority contract.
type rule struct {
	name  string
	match func(s *scanner, trimmed string) bool
	apply func(s *scanner, line, trimmed string)
}

var rules = []rule{
	{
		// A body being discarded consumes everything, including the
		// line that closes it. Brace counting is naive by contract:
		// braces inside strings and regexes count too.
		name: "skip-body",
		match: func(s *scanner, trimmed string) bool {
			return s.mode == modeSkipBody
		},
		apply: func(s *scanner, line, trimmed string) {
			s.skipDepth += braceDelta(trimmed)
			if s.skipDepth <= 0 {
				s.skipDepth = 0
				s.mode = modeNormal
			}
		},
	},
	{
		name: "doc-comment-body",
		match: func(s *scanner, trimmed string) bool {
			return s.mode == modeDocComment
		},
		apply: func(s *scanner, line, trimmed string) {
			s.emit(line)
			if strings.HasSuffix(trimmed, "*/") {
				s.mode = modeNormal
			}
		},
	},
	{
		name: "doc-comment-open",
		match: func(s *scanner, trimmed string) bool {
			return strings.HasPrefix(trimmed, "/**")
		},
		apply: func(s *scanner, line, trimmed string) {
			s.emit(line)
			s.mode = modeDocComment
		},
	},
	{
		// Conditionals are removed wherever they appear. The brace they
		// open is not balanced here; the enclosing body skip, when there
		// is one, discards the lines that follow.
		name: "conditional",
		match: func(s *scanner, trimmed string) bool {
			return conditionalRe.MatchString(trimmed)
		},
		apply: func(s *scanner, line, trimmed string) {},
	},
	{
		name: "type-decl",
		match: func(s *scanner, trimmed string) bool {
			return typeDeclRe.MatchString(trimmed)
		},
		apply: func(s *scanner, line, trimmed string) {
			if !strings.HasSuffix(trimmed, "{") {
				line = strings.TrimRight(line, " \t") + " {"
			}
			s.emit(line)
			s.inTypeBlock = true
		},
	},
	{
		// A lone closer only means something while a type block is
		// open; a stray one at top level is dropped.
		name: "block-close",
		match: func(s *scanner, trimmed string) bool {
			return trimmed == "}"
		},
		apply: func(s *scanner, line, trimmed string) {
			if s.inTypeBlock {
				s.emit("}")
				s.inTypeBlock = false
			}
		},
	},
	{
		// Inside a type block only member declarations survive; field
		// declarations, stray comments and blank lines are dropped.
		name: "type-member",
		match: func(s *scanner, trimmed string) bool {
			return s.inTypeBlock
		},
		apply: func(s *scanner, line, trimmed string) {
			if !memberRe.MatchString(trimmed) {
				return
			}
			s.emit(memberIndent + normalizeDecl(trimmed))
			if strings.HasSuffix(trimmed, "{") {
				s.skipDepth = 1
				s.mode = modeSkipBody
			}
		},
	},
	{
		name: "top-level-func",
		match: func(s *scanner, trimmed string) bool {
			return funcDeclRe.MatchString(trimmed) || arrowDeclRe.MatchString(trimmed)
		},
		apply: func(s *scanner, line, trimmed string) {
			s.emit(normalizeDecl(trimmed))
			if strings.HasSuffix(trimmed, "{") {
				s.skipDepth = 1
				s.mode = modeSkipBody
			}
		},
	},
	{
		name: "passthrough",
		match: func(s *scanner, trimmed string) bool {
			return strings.HasPrefix(trimmed, "import") ||
				strings.HasPrefix(trimmed, "export") ||
				strings.HasPrefix(trimmed, "//") ||
				strings.HasPrefix(trimmed, "/*")
		},
		apply: func(s *scanner, line, trimmed string) {
			s.emit(line)
		},
	},
	{
		// Catch-all: top-level statements, expressions and stray logic.
		name: "drop",
		match: func(s *scanner, trimmed string) bool {
			return true
		},
		apply: func(s *scanner, line, trimmed string) {},
	},
}

// Reduce transforms source text into its skeleton. It is a pure
// function: stateless across calls and safe to invoke concurrently on
// independent inputs. The result always ends with exactly one trailing
// newline; empty input yields a single newline.
func Reduce(src string) string {
	s := &scanner{}
	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(line)
		for _, r := range rules {
			if r.match(s, trimmed) {
				r.apply(s, line, trimmed)
				break
			}
		}
	}
	return s.result()
}

func (s *scanner) emit(line string) {
	s.out = append(s.out, line)
}

func (s *scanner) result() string {
	out := s.out
	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n") + "\n"
}

func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}

// normalizeDecl reduces a declaration line to a one-line signature with
// an empty body: the trailing opening brace goes, a missing parameter
// list becomes (), whitespace before the body marker and around a
// trailing arrow collapses. Stripping an existing {} first makes
// already-reduced declarations a fixed point.
func normalizeDecl(trimmed string) string {
	sig := strings.TrimSuffix(trimmed, "{")
	sig = strings.TrimRight(sig, " \t")
	sig = strings.TrimSuffix(sig, "{}")
	sig = strings.TrimRight(sig, " \t")
	if !strings.Contains(sig, "(") {
		sig += "()"
	}
	if loc := arrowTailRe.FindStringIndex(sig); loc != nil {
		sig = strings.TrimRight(sig[:loc[0]], " \t") + "=>"
	}
	return sig + "{}"
}

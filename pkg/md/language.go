package md

import "strings"

const (
	executeSentinel = "__execute__"
	languageSep     = "|"
)

// CodeLanguage is the language of a code block together with whether the
// block is executable. Executable blocks keep their original tag for display
// purposes only; it never selects a grammar.
type CodeLanguage struct {
	Tag        string
	Executable bool
}

// Ordinary returns the language of a regular code block.
func Ordinary(tag string) CodeLanguage {
	return CodeLanguage{Tag: tag}
}

// Executable returns the language of an executable code block.
func Executable(tag string) CodeLanguage {
	return CodeLanguage{Tag: tag, Executable: true}
}

// Encode returns the string form of the language. Ordinary languages encode
// as the bare tag; executable ones as "__execute__|<tag>".
func (l CodeLanguage) Encode() string {
	if l.Executable {
		return executeSentinel + languageSep + l.Tag
	}
	return l.Tag
}

// ParseLanguage decodes a value produced by Encode. Any value that is not
// exactly "<sentinel>|<tag>" is an ordinary language named by the whole value.
func ParseLanguage(s string) CodeLanguage {
	parts := strings.Split(s, languageSep)
	if len(parts) == 2 && parts[0] == executeSentinel {
		return Executable(parts[1])
	}
	return Ordinary(s)
}

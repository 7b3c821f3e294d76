package surface

import (
	"unicode"
	"unicode/utf8"
)

// TokenKind identifies a lexical token.
type TokenKind int

const (
	TokWord      TokenKind = iota // identifier, dotted path, or number
	TokString                     // "..." literal, quotes included
	TokTag                        // @name, '@' excluded from Text
	TokInherit                    // <-
	TokSend                       // ->
)

func (k TokenKind) String() string {
	switch k {
	case TokWord:
		return "word"
	case TokString:
		return "string"
	case TokTag:
		return "tag"
	case TokInherit:
		return "'<-'"
	case TokSend:
		return "'->'"
	default:
		return "token"
	}
}

// Token is one lexeme on a line.
type Token struct {
	Kind TokenKind
	Text string
	Col  int // 1-based rune column
}

// lexLine splits one source line into tokens. Comments start with "//"
// outside string literals and run to the end of the line.
func lexLine(line string, lineNo int) ([]Token, error) {
	var toks []Token
	runes := []rune(line)
	i := 0
	for i < len(runes) {
		r := runes[i]
		col := i + 1

		switch {
		case unicode.IsSpace(r):
			i++

		case r == '/' && i+1 < len(runes) && runes[i+1] == '/':
			return toks, nil

		case r == '<' && i+1 < len(runes) && runes[i+1] == '-':
			toks = append(toks, Token{Kind: TokInherit, Text: "<-", Col: col})
			i += 2

		case r == '-' && i+1 < len(runes) && runes[i+1] == '>':
			toks = append(toks, Token{Kind: TokSend, Text: "->", Col: col})
			i += 2

		case r == '"':
			end, err := scanString(runes, i, lineNo)
			if err != nil {
				return nil, err
			}
			toks = append(toks, Token{Kind: TokString, Text: string(runes[i:end]), Col: col})
			i = end

		case r == '@':
			j := i + 1
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			if j == i+1 {
				return nil, &SyntaxError{Line: lineNo, Col: col, Message: "expected tag name after '@'"}
			}
			toks = append(toks, Token{Kind: TokTag, Text: string(runes[i+1 : j]), Col: col})
			i = j

		case isWordRune(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			j := i + 1
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			toks = append(toks, Token{Kind: TokWord, Text: string(runes[i:j]), Col: col})
			i = j

		default:
			return nil, &SyntaxError{Line: lineNo, Col: col, Message: "unexpected character " + quoteRune(r)}
		}
	}
	return toks, nil
}

// scanString returns the index just past the closing quote of the literal
// starting at runes[start].
func scanString(runes []rune, start, lineNo int) (int, error) {
	for j := start + 1; j < len(runes); j++ {
		switch runes[j] {
		case '\\':
			j++
		case '"':
			return j + 1, nil
		}
	}
	return 0, &SyntaxError{Line: lineNo, Col: start + 1, Message: "unterminated string literal"}
}

func isWordRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func quoteRune(r rune) string {
	if r == utf8.RuneError {
		return "(invalid UTF-8)"
	}
	return "'" + string(r) + "'"
}

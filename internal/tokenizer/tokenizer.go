package tokenizer

import (
	"github.com/shapestone/shape-core/pkg/tokenizer"
)

// NewTokenizer creates a tokenizer for a request start line.
//
// Every SP is a token of its own, so doubled, leading, or trailing spaces
// show up as empty fields in Fields rather than being collapsed.
//
// Note: the default whitespace skipper is not used because a space is the
// start line's only separator.
func NewTokenizer() tokenizer.Tokenizer {
	return tokenizer.NewTokenizerWithoutWhitespace(
		SPMatcher(),
		WordMatcher(),
	)
}

// NewTokenizerWithStream creates a start-line tokenizer using a pre-configured stream.
func NewTokenizerWithStream(stream tokenizer.Stream) tokenizer.Tokenizer {
	tok := NewTokenizer()
	tok.InitializeFromStream(stream)
	return tok
}

// SPMatcher matches a single space character.
func SPMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		r, ok := stream.PeekChar()
		if !ok {
			return nil
		}
		if r == ' ' {
			stream.NextChar()
			return tokenizer.NewToken(TokenSP, []rune{' '})
		}
		return nil
	}
}

// WordMatcher matches any sequence of characters up to the next SP or EOS.
// Tabs and other whitespace are part of the word.
func WordMatcher() tokenizer.Matcher {
	return func(stream tokenizer.Stream) *tokenizer.Token {
		var value []rune

		for {
			r, ok := stream.PeekChar()
			if !ok || r == ' ' {
				break
			}
			stream.NextChar()
			value = append(value, r)
		}

		if len(value) == 0 {
			return nil
		}

		return tokenizer.NewToken(TokenWord, value)
	}
}

// Fields splits line on single spaces, in the manner of
// strings.Split(line, " "): n separators always yield n+1 fields, some of
// which may be empty. ok is false if the tokenizer could not consume the
// whole line.
func Fields(line string) (fields []string, ok bool) {
	if line == "" {
		return []string{""}, true
	}

	tok := NewTokenizerWithStream(tokenizer.NewStream(line))
	tokens, eos := tok.Tokenize()
	if !eos {
		return nil, false
	}

	fields = make([]string, 1, 4)
	for _, t := range tokens {
		switch t.Kind() {
		case TokenSP:
			fields = append(fields, "")
		case TokenWord:
			fields[len(fields)-1] = t.ValueString()
		default:
			return nil, false
		}
	}
	return fields, true
}

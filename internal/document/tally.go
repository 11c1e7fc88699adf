package document

import (
	"unicode"
	"unicode/utf8"
)

// Tally is the running state of a whitespace-delimited word counter.
// It is a value type: Reduce never mutates its input.
type Tally struct {
	Words int

	inWord bool
	// carry holds the bytes of a rune split across chunk boundaries.
	carry [utf8.UTFMax]byte
	n     int
}

// Reduce feeds chunk into t and returns the next state.
// Counting is chunk-boundary invariant: reducing "ab", "c d" yields the same
// Words as reducing "abc d" in one piece, including splits inside a multi-byte rune.
func Reduce(t Tally, chunk string) Tally {
	data := chunk
	if t.n > 0 {
		data = string(t.carry[:t.n]) + chunk
		t.n = 0
	}

	for i := 0; i < len(data); {
		if !utf8.FullRuneInString(data[i:]) {
			t.n = copy(t.carry[:], data[i:])
			break
		}
		r, size := utf8.DecodeRuneInString(data[i:])
		t = t.step(r)
		i += size
	}
	return t
}

// Flush settles any carried partial rune. Invalid trailing bytes count as
// non-space, matching how strings.Fields decodes them.
func Flush(t Tally) Tally {
	for i := 0; i < t.n; i++ {
		t = t.step(utf8.RuneError)
	}
	t.n = 0
	return t
}

func (t Tally) step(r rune) Tally {
	space := unicode.IsSpace(r)
	if !space && !t.inWord {
		t.Words++
	}
	t.inWord = !space
	return t
}

// CountWords counts whitespace-delimited tokens in s.
func CountWords(s string) int {
	return Flush(Reduce(Tally{}, s)).Words
}

package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"only spaces", "   \n\t ", 0},
		{"single word", "lighthouse", 1},
		{"leading and trailing space", "  the keeper  ", 2},
		{"mixed whitespace", "one\ttwo\nthree\r\nfour", 4},
		{"unicode space", "a　b c", 3},
		{"punctuation stays attached", "dusk, then -- light.", 4},
		{"cjk without spaces", "灯塔守护者", 1},
		{"invalid utf8", "ab\xffcd ef", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords(tt.text))
			assert.Equal(t, len(strings.Fields(tt.text)), CountWords(tt.text))
		})
	}
}

// Every split point of the input, including inside multi-byte runes, must
// produce the same count as strings.Fields over the whole text.
func TestReduce_ChunkBoundaryInvariant(t *testing.T) {
	inputs := []string{
		"The lamp turned all night over the black water.",
		"  double  spaces\tand\ttabs\n\nparagraphs  ",
		"wide　space and nbsp here",
		"émigré café naïve",
		"trailing partial \xe3\x80",
		"x",
	}

	for _, in := range inputs {
		want := len(strings.Fields(in))
		for i := 0; i <= len(in); i++ {
			for j := i; j <= len(in); j++ {
				var tl Tally
				tl = Reduce(tl, in[:i])
				tl = Reduce(tl, in[i:j])
				tl = Reduce(tl, in[j:])
				got := Flush(tl).Words
				if got != want {
					t.Fatalf("split %q at %d,%d: got %d words, want %d", in, i, j, got, want)
				}
			}
		}
	}
}

func TestReduce_ByteAtATime(t *testing.T) {
	in := "Beacon—keeper of the 灯 and the storm"
	var tl Tally
	for i := 0; i < len(in); i++ {
		tl = Reduce(tl, in[i:i+1])
	}
	assert.Equal(t, len(strings.Fields(in)), Flush(tl).Words)
}

func TestAccumulator_AppendAndFinalize(t *testing.T) {
	acc := NewAccumulator()

	require.NoError(t, acc.Append("The keeper climbed the stairs."))
	require.NoError(t, acc.Append("Below, the sea kept its own counsel."))

	assert.Equal(t, 2, acc.Segments())
	assert.Equal(t, 12, acc.WordCount())

	doc := acc.Finalize()
	assert.Equal(t, "The keeper climbed the stairs.\n\nBelow, the sea kept its own counsel.", doc.Text)
	assert.Equal(t, len(strings.Fields(doc.Text)), doc.WordCount)
	assert.Len(t, doc.Segments, 2)
}

func TestAccumulator_SegmentsDoNotFuse(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.Append("ends-without-space"))
	require.NoError(t, acc.Append("starts-without-space"))

	doc := acc.Finalize()
	assert.Equal(t, 2, doc.WordCount)
	assert.Equal(t, len(strings.Fields(doc.Text)), doc.WordCount)
}

func TestAccumulator_FinalizeIdempotent(t *testing.T) {
	ticks := []time.Time{
		time.Unix(100, 0),
		time.Unix(103, 0),
		time.Unix(999, 0),
	}
	i := 0
	clock := func() time.Time {
		now := ticks[i]
		if i < len(ticks)-1 {
			i++
		}
		return now
	}

	acc := NewAccumulator(WithClock(clock))
	require.NoError(t, acc.Append("first"))

	first := acc.Finalize()
	second := acc.Finalize()

	assert.Equal(t, first, second)
	assert.Equal(t, 3*time.Second, first.Duration)

	err := acc.Append("late")
	assert.ErrorIs(t, err, ErrFinalized)
	assert.Equal(t, first, acc.Finalize())
}

func TestAccumulator_FinalizedDocumentIsDetached(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.Append("alpha"))

	doc := acc.Finalize()
	doc.Segments[0] = "mutated"

	assert.Equal(t, "alpha", acc.Finalize().Segments[0])
}

func TestDraft_CommitUpdatesCountIncrementally(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.Append("one two"))

	d, err := acc.Begin()
	require.NoError(t, err)

	for _, chunk := range []string{"thr", "ee fo", "ur  fi", "ve"} {
		require.NoError(t, d.Write(chunk))
	}
	assert.Equal(t, 3, d.Words())
	assert.Equal(t, 5, d.LiveWords())
	assert.Equal(t, 2, acc.WordCount(), "uncommitted draft must not change the document")

	require.NoError(t, d.Commit())
	assert.Equal(t, 5, acc.WordCount())
	assert.Equal(t, "one two\n\nthree four  five", acc.Text())

	assert.ErrorIs(t, d.Write("more"), ErrDraftClosed)
	assert.ErrorIs(t, d.Commit(), ErrDraftClosed)
}

func TestDraft_DiscardLeavesDocumentUntouched(t *testing.T) {
	acc := NewAccumulator()
	require.NoError(t, acc.Append("kept"))

	d, err := acc.Begin()
	require.NoError(t, err)
	require.NoError(t, d.Write("half a sente"))
	d.Discard()
	d.Discard()

	assert.Equal(t, 1, acc.Segments())
	assert.Equal(t, 1, acc.WordCount())
	assert.Equal(t, "kept", acc.Finalize().Text)
}

func TestDraft_BeginAfterFinalize(t *testing.T) {
	acc := NewAccumulator()
	acc.Finalize()

	_, err := acc.Begin()
	assert.ErrorIs(t, err, ErrFinalized)
}

func TestDraft_FinalizeDiscardsOpenDraft(t *testing.T) {
	acc := NewAccumulator()
	d, err := acc.Begin()
	require.NoError(t, err)
	require.NoError(t, d.Write("orphan"))

	doc := acc.Finalize()
	assert.Empty(t, doc.Segments)
	assert.Equal(t, 0, doc.WordCount)
	assert.ErrorIs(t, d.Commit(), ErrDraftClosed)
}

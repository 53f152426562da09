package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/repgrep/pkg/rg"
)

func plain(s string) Segment { return Segment{Text: s, Role: RolePlain} }
func lineNo(s string) Segment { return Segment{Text: s, Role: RoleLineNumber} }
func kept(s string) Segment  { return Segment{Text: s, Role: RoleMatchedKept} }
func preview(s string) Segment {
	return Segment{Text: s, Role: RoleReplacementPreview}
}

func TestSegments_NoReplacement(t *testing.T) {
	assert.Equal(t, []Segment{plain("src/model/item.rs")}, NewItem(beginMsg()).Segments(nil, NoFocus))
	assert.Equal(t, []Segment{
		lineNo("197:"),
		plain("    "),
		kept("Item"),
		plain("::new("),
		kept("rg_msg"),
		plain(")\n"),
	}, NewItem(matchMsg()).Segments(nil, NoFocus))
	assert.Equal(t, []Segment{lineNo("198:"), plain("  }\n")}, NewItem(contextMsg()).Segments(nil, NoFocus))
	assert.Empty(t, NewItem(endMsg(nil)).Segments(nil, NoFocus))
	assert.Equal(t, []Segment{plain("Search duration: 0.013911s")}, NewItem(summaryMsg()).Segments(nil, NoFocus))
}

func TestSegments_WithReplacement(t *testing.T) {
	r := "foobar"
	assert.Equal(t, []Segment{
		lineNo("197:"),
		plain("    "),
		kept("Item"),
		preview("foobar"),
		plain("::new("),
		kept("rg_msg"),
		preview("foobar"),
		plain(")\n"),
	}, NewItem(matchMsg()).Segments(&r, NoFocus))

	// context lines never get a preview
	assert.Equal(t, []Segment{lineNo("198:"), plain("  }\n")}, NewItem(contextMsg()).Segments(&r, NoFocus))
}

func TestSegments_DroppedSubMatchHasNoPreview(t *testing.T) {
	r := "baz"
	item := NewItem(rg.Match{
		Path:           rg.FromText("a.txt"),
		Lines:          rg.FromText("foo bar foo\n"),
		AbsoluteOffset: 100,
		SubMatches: []rg.SubMatch{
			rg.NewSubMatch("foo", 0, 3),
			rg.NewSubMatch("foo", 8, 11),
		},
	})
	item.Toggle(1)

	assert.Equal(t, []Segment{
		kept("foo"),
		preview("baz"),
		plain(" bar "),
		{Text: "foo", Role: RoleMatchedDropped, Focused: true},
		plain("\n"),
	}, item.Segments(&r, 1))
}

func TestSegments_Focus(t *testing.T) {
	segs := NewItem(matchMsg()).Segments(nil, 0)
	assert.True(t, segs[2].Focused)
	assert.False(t, segs[4].Focused)
}

func TestSegments_InvalidUTF8StaysAligned(t *testing.T) {
	lines := []byte("    \x80Item::\x80new(rg_msg)\n")
	item := NewItem(rg.Match{
		Path:       rg.FromText("a"),
		Lines:      rg.FromBytes(lines),
		LineNumber: u64(197),
		SubMatches: []rg.SubMatch{
			rg.NewSubMatch("Item", 5, 9),
			rg.NewSubMatch("rg_msg", 16, 22),
		},
	})

	assert.Equal(t, []Segment{
		lineNo("197:"),
		plain("    �"),
		kept("Item"),
		plain("::�new("),
		kept("rg_msg"),
		plain(")\n"),
	}, item.Segments(nil, NoFocus))
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "matched-dropped", RoleMatchedDropped.String())
	assert.Equal(t, "replacement-preview", RoleReplacementPreview.String())
}

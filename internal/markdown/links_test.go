package markdown

import (
	"reflect"
	"testing"
)

func TestExtractLinks_Wikilinks(t *testing.T) {
	body := "See [[Note A]] and [[Note B|alias]].\nAlso [[Note A]] again."
	got := ExtractLinks(body)
	want := []string{"Note A", "Note B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestExtractLinks_MarkdownLocal(t *testing.T) {
	body := "Read [this](notes/other-note.md) and [that](https://example.com/page.md)."
	got := ExtractLinks(body)
	want := []string{"other-note"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestExtractLinks_Mixed(t *testing.T) {
	body := "[[Alpha]] then [beta](beta.md) then [[Alpha|again]]"
	got := ExtractLinks(body)
	want := []string{"Alpha", "beta"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("links = %v, want %v", got, want)
	}
}

func TestExtractLinks_IgnoresNonNotes(t *testing.T) {
	body := "[img](pic.png) and [site](https://example.com) and [[ ]]"
	if got := ExtractLinks(body); len(got) != 0 {
		t.Errorf("expected no links, got %v", got)
	}
}

func TestNoteName(t *testing.T) {
	if got := NoteName("permanent/Deep Work.md"); got != "Deep Work" {
		t.Errorf("name = %q", got)
	}
	if got := NoteName("flat.md"); got != "flat" {
		t.Errorf("name = %q", got)
	}
}

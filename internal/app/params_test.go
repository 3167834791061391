package app

import (
	"net/url"
	"testing"
)

func TestShareURL_OrderAndEmptyValues(t *testing.T) {
	p := NewParams(map[string]any{"title": "T"})
	p.Set("b", "two words", true)
	p.Set("a", 1, true)
	p.Set("off", false, true)
	p.Set("hidden", "x", false)
	p.MarkShareable("title")
	p.MarkShareable("b")
	p.MarkShareable("missing")

	got := p.ShareURL("http://h/p")
	want := "http://h/p?b=two+words&a=1&title=T"
	if got != want {
		t.Fatalf("ShareURL=%q want %q", got, want)
	}
	if s := p.Shareable(); len(s) != 4 {
		t.Fatalf("shareable=%v", s)
	}
}

func TestShareURL_NoParamsIsBase(t *testing.T) {
	p := NewParams(nil)
	if got := p.ShareURL("http://h/"); got != "http://h/" {
		t.Fatalf("got %q", got)
	}
}

func TestApplyQuery_LastValueWins(t *testing.T) {
	p := NewParams(nil)
	p.ApplyQuery(url.Values{"type": {"Office", "Retail"}})
	if p.Get("type") != "Retail" {
		t.Fatalf("type=%v", p.Get("type"))
	}
	if s := p.Shareable(); len(s) != 1 || s[0] != "type" {
		t.Fatalf("shareable=%v", s)
	}
}

func TestWatchParam(t *testing.T) {
	p := NewParams(map[string]any{"title": "a"})
	var seen []any
	cancel := p.Watch("title", func(v any) { seen = append(seen, v) })
	p.Set("title", "b", false)
	cancel()
	p.Set("title", "c", false)
	if len(seen) != 2 || seen[0] != "a" || seen[1] != "b" {
		t.Fatalf("seen=%v", seen)
	}
}

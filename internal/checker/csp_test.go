package checker

import (
	"reflect"
	"testing"
)

func TestParseCSP(t *testing.T) {
	csp := ParseCSP("  Default-Src 'self' ;script-src   'self' https://cdn.example.com;; upgrade-insecure-requests ; img-src a; img-src b")

	want := CSP{
		"default-src":               {"'self'"},
		"script-src":                {"'self'", "https://cdn.example.com"},
		"upgrade-insecure-requests": {},
		"img-src":                   {"b"},
	}
	if len(csp) != len(want) {
		t.Fatalf("expected %d directives, got %d: %v", len(want), len(csp), csp)
	}
	for name, values := range want {
		got, ok := csp[name]
		if !ok {
			t.Fatalf("missing directive %s", name)
		}
		if len(got) == 0 && len(values) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, values) {
			t.Errorf("%s = %v, want %v", name, got, values)
		}
	}
	if !csp.Has("upgrade-insecure-requests") {
		t.Error("valueless directive should still be declared")
	}
}

func TestCSP_ScriptSources(t *testing.T) {
	if got := ParseCSP("default-src 'self'").ScriptSources(); len(got) != 1 || got[0] != "'self'" {
		t.Fatalf("expected default-src fallback, got %v", got)
	}
	if got := ParseCSP("img-src *").ScriptSources(); len(got) != 0 {
		t.Fatalf("expected no sources, got %v", got)
	}
}

func TestMentionsFrameAncestors(t *testing.T) {
	if !mentionsFrameAncestors("default-src 'self'; FRAME-ANCESTORS 'none'") {
		t.Fatal("expected case-insensitive match")
	}
	if mentionsFrameAncestors("default-src 'self'") {
		t.Fatal("unexpected match")
	}
}

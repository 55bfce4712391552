package collector

import (
	"testing"
	"time"

	"github.com/khanhnv2901/seca-pagescan/internal/dom"
	"github.com/khanhnv2901/seca-pagescan/internal/domain/signal"
)

func parse(t *testing.T, body, location string) *dom.Document {
	t.Helper()
	doc, err := dom.ParseString(body, location)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

func kinds(signals []signal.Signal) []signal.Kind {
	out := make([]signal.Kind, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Kind)
	}
	return out
}

func equalKinds(got []signal.Signal, want ...signal.Kind) bool {
	k := kinds(got)
	if len(k) != len(want) {
		return false
	}
	for i := range k {
		if k[i] != want[i] {
			return false
		}
	}
	return true
}

func TestScanForms_InsecurePasswordForm(t *testing.T) {
	doc := parse(t, `<form id="login" action="http://x.com" method="get">
		<input type="password" name="pw">
	</form>`, "https://example.com/")

	got := scanForms(doc)
	if !equalKinds(got, signal.KindFormPostsToHTTP, signal.KindPasswordViaGET, signal.KindPasswordAutocomplete) {
		t.Fatalf("unexpected signals: %v", kinds(got))
	}
	if got[0].URL != "http://x.com" || got[0].Method != "get" {
		t.Errorf("unexpected form signal %+v", got[0])
	}
	if got[0].Evidence != "form#login" {
		t.Errorf("unexpected evidence %q", got[0].Evidence)
	}
	if got[2].Evidence != "form#login > input" {
		t.Errorf("autocomplete evidence should point at the input, got %q", got[2].Evidence)
	}
}

func TestScanForms(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		location string
		want     []signal.Kind
	}{
		{
			name:     "secure post form",
			body:     `<form action="/login" method="POST"><input type="password" autocomplete="current-password"></form>`,
			location: "https://example.com/",
			want:     nil,
		},
		{
			name:     "method defaults to get",
			body:     `<form action="/login"><input type="password" autocomplete="current-password"></form>`,
			location: "https://example.com/",
			want:     []signal.Kind{signal.KindPasswordViaGET},
		},
		{
			name:     "method is case-insensitive",
			body:     `<form method="GeT"><input type="PASSWORD" autocomplete="off"></form>`,
			location: "https://example.com/",
			want:     []signal.Kind{signal.KindPasswordViaGET},
		},
		{
			name:     "empty autocomplete is missing",
			body:     `<form method="post"><input type="password" autocomplete=""></form>`,
			location: "https://example.com/",
			want:     []signal.Kind{signal.KindPasswordAutocomplete},
		},
		{
			name:     "http page does not flag cleartext action",
			body:     `<form action="http://x.com" method="post"></form>`,
			location: "http://example.com/",
			want:     nil,
		},
		{
			name:     "relative action inherits https",
			body:     `<form action="submit" method="post"></form>`,
			location: "https://example.com/a/",
			want:     nil,
		},
		{
			name:     "malformed action is skipped",
			body:     `<form action="http://[::1" method="post"></form>`,
			location: "https://example.com/",
			want:     nil,
		},
		{
			name:     "malformed action still checks password method",
			body:     `<form action="http://[::1"><input type="password" autocomplete="off"></form>`,
			location: "https://example.com/",
			want:     []signal.Kind{signal.KindPasswordViaGET},
		},
		{
			name:     "base href downgrades action",
			body:     `<head><base href="http://legacy.example.com/"></head><form action="login" method="post"></form>`,
			location: "https://example.com/",
			want:     []signal.Kind{signal.KindFormPostsToHTTP},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanForms(parse(t, tt.body, tt.location))
			if !equalKinds(got, tt.want...) {
				t.Fatalf("got %v, want %v", kinds(got), tt.want)
			}
		})
	}
}

func TestScanMixedContent(t *testing.T) {
	body := `<html><head>
		<script src="http://cdn.example.com/a.js"></script>
		<link rel="stylesheet" href="http://cdn.example.com/a.css">
		<link rel="icon" href="http://cdn.example.com/favicon.ico">
		<link rel="alternate stylesheet" href="http://cdn.example.com/alt.css">
		<link rel="StyleSheet" href="http://cdn.example.com/b.css">
	</head><body>
		<img src="//img.example.com/secure.png">
		<img src="http://img.example.com/plain.png">
		<iframe src=""></iframe>
		<video src="http://media.example.com/v.mp4"></video>
		<img src="http://[::1">
	</body></html>`

	got := scanMixedContent(parse(t, body, "https://example.com/"))
	want := []struct{ element, attr, url string }{
		{"script", "src", "http://cdn.example.com/a.js"},
		{"img", "src", "http://img.example.com/plain.png"},
		{"link", "href", "http://cdn.example.com/a.css"},
		{"link", "href", "http://cdn.example.com/b.css"},
		{"video", "src", "http://media.example.com/v.mp4"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d signals, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		s := got[i]
		if s.Kind != signal.KindMixedContent || s.Element != w.element || s.Attr != w.attr || s.URL != w.url {
			t.Errorf("signal %d = %+v, want %+v", i, s, w)
		}
		if s.Evidence == "" {
			t.Errorf("signal %d has no evidence", i)
		}
	}
}

func TestScanMixedContent_HTTPPage(t *testing.T) {
	got := scanMixedContent(parse(t, `<script src="http://cdn.example.com/a.js"></script>`, "http://example.com/"))
	if len(got) != 0 {
		t.Fatalf("expected no mixed content on an http page, got %+v", got)
	}
}

func TestScanURLLeakage(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"https://example.com/cb#access_token=abc&state=1", "access_token="},
		{"https://example.com/?TOKEN=abc", `\btoken=`},
		{"https://example.com/?mytoken=abc", ""},
		{"https://example.com/?x=1&api_key=secret", `\bapi_key=`},
		{"https://example.com/?id_token=a&session=b", "id_token="},
		{"https://example.com/session=abc", ""},
		{"https://example.com/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			got := scanURLLeakage(parse(t, "<p></p>", tt.location))
			if tt.want == "" {
				if len(got) != 0 {
					t.Fatalf("expected no signal, got %+v", got)
				}
				return
			}
			if len(got) != 1 {
				t.Fatalf("expected exactly one signal, got %+v", got)
			}
			if got[0].Pattern != tt.want {
				t.Fatalf("pattern = %q, want %q", got[0].Pattern, tt.want)
			}
			if got[0].Evidence != "URL contains sensitive-looking parameter matching "+tt.want {
				t.Fatalf("unexpected evidence %q", got[0].Evidence)
			}
		})
	}
}

func TestScanInlineScripts(t *testing.T) {
	body := `<body>
		<script id="both">var q = location.search; el.innerHTML = q;</script>
		<script id="sink-only">el.innerHTML = "static";</script>
		<script id="source-only">console.log(document.cookie);</script>
		<script id="external" src="/app.js">el.innerHTML = location.hash;</script>
		<script id="order">eval(localStorage.getItem("x")); document.write(location.href)</script>
	</body>`

	got := scanInlineScripts(parse(t, body, "https://example.com/"))
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %+v", got)
	}
	if got[0].Source != "location" || got[0].Sink != "innerHTML" || got[0].Evidence != "script#both" {
		t.Errorf("unexpected first signal %+v", got[0])
	}
	// list order decides, not position in the script body
	if got[1].Sink != "document.write" || got[1].Source != "location" {
		t.Errorf("unexpected second signal %+v", got[1])
	}
}

func TestScanTabnabbing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"missing noreferrer", `<a href="/x" target="_blank" rel="noopener">x</a>`, 1},
		{"both present", `<a href="/x" target="_blank" rel="noopener noreferrer">x</a>`, 0},
		{"case-insensitive rel", `<a href="/x" target="_blank" rel="NoOpener NOREFERRER">x</a>`, 0},
		{"no rel", `<a href="/x" target="_blank">x</a>`, 1},
		{"other target", `<a href="/x" target="_self">x</a>`, 0},
		{"case-insensitive target", `<a href="/x" target="_BLANK" rel="">x</a>`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scanTabnabbing(parse(t, tt.body, "https://example.com/"))
			if len(got) != tt.want {
				t.Fatalf("expected %d signals, got %+v", tt.want, got)
			}
			if tt.want == 1 && got[0].Href != "https://example.com/x" {
				t.Fatalf("unexpected href %q", got[0].Href)
			}
		})
	}
}

func TestScanInlineHandlers(t *testing.T) {
	body := `<body>
		<button id="b" onsubmit="x()" onclick="y()">go</button>
		<img id="i" onerror="z()">
		<div id="d">plain</div>
	</body>`
	got := scanInlineHandlers(parse(t, body, "https://example.com/"))
	if len(got) != 2 {
		t.Fatalf("expected 2 signals, got %+v", got)
	}
	if got[0].Attr != "onclick" || got[0].Evidence != "button#b" {
		t.Errorf("unexpected first signal %+v", got[0])
	}
	if got[1].Attr != "onerror" || got[1].Evidence != "img#i" {
		t.Errorf("unexpected second signal %+v", got[1])
	}
}

func TestCollect(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := New(WithClock(func() time.Time { return at }))

	doc := parse(t, `<a target="_blank" href="/x">x</a><div onclick="f()"></div>`, "https://example.com:8443/p?q=1")
	snap := c.Collect(doc)

	if snap.Page.URL != "https://example.com:8443/p?q=1" {
		t.Errorf("unexpected url %q", snap.Page.URL)
	}
	if snap.Page.Origin != "https://example.com:8443" || snap.Page.Protocol != "https:" {
		t.Errorf("unexpected page metadata %+v", snap.Page)
	}
	if !snap.Page.CollectedAt.Equal(at) {
		t.Errorf("unexpected timestamp %v", snap.Page.CollectedAt)
	}
	if !equalKinds(snap.Signals, signal.KindTabnabbing, signal.KindInlineEventHandler) {
		t.Fatalf("unexpected signals %v", kinds(snap.Signals))
	}
}

func TestCollect_CleanPage(t *testing.T) {
	snap := Collect(parse(t, `<p>hello</p>`, "https://example.com/"))
	if snap.Signals == nil || len(snap.Signals) != 0 {
		t.Fatalf("expected empty non-nil signal list, got %#v", snap.Signals)
	}
}

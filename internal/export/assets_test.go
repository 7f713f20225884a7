package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/coursesmith-backend/internal/logger"
)

// pngBytes is a syntactically valid PNG header padded past the minimum
// asset size.
func pngBytes() []byte {
	header := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}
	return append(header, make([]byte, 128)...)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func readArchive(t *testing.T, buf *bytes.Buffer) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	entries := map[string][]byte{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		var content bytes.Buffer
		if _, err := content.ReadFrom(rc); err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		rc.Close()
		entries[f.Name] = content.Bytes()
	}
	return entries
}

func TestLocalizeDeduplicatesIdenticalReferences(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes())
	}))
	defer srv.Close()

	url := srv.URL + "/logo.png"
	html := fmt.Sprintf(`<html><body>
		<img src="%s">
		<p>text</p>
		<div style="background-image: url(%s)"></div>
	</body></html>`, url, url)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	l := NewAssetLocalizer(testLogger(t))

	localized, written := l.Localize(context.Background(), html, zw, "artifact-1")
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	if hits != 1 {
		t.Errorf("identical references must be fetched once, got %d fetches", hits)
	}
	if len(written) != 1 {
		t.Fatalf("expected exactly one embedded asset, got %d", len(written))
	}
	if written[0] != "artifact-1/assets/img_001.png" {
		t.Errorf("unexpected asset path %q", written[0])
	}
	if strings.Contains(localized, url) {
		t.Errorf("original reference survived rewriting:\n%s", localized)
	}
	if got := strings.Count(localized, "assets/img_001.png"); got != 2 {
		t.Errorf("both references must share the rewritten path, found %d occurrences", got)
	}

	entries := readArchive(t, &buf)
	if len(entries) != 1 {
		t.Errorf("archive must contain exactly one embedded copy, got %d entries", len(entries))
	}
}

func TestLocalizeFailuresKeepOriginalReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing.png":
			http.NotFound(w, r)
		case "/tiny.png":
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		case "/not-an-image.png":
			w.Write([]byte(strings.Repeat("definitely text ", 16)))
		}
	}))
	defer srv.Close()

	cases := []struct {
		name string
		ref  string
	}{
		{name: "http_error", ref: srv.URL + "/missing.png"},
		{name: "below_min_size", ref: srv.URL + "/tiny.png"},
		{name: "bad_magic_bytes", ref: srv.URL + "/not-an-image.png"},
		{name: "data_uri_skipped", ref: "data:image/png;base64,iVBORw0KGgo="},
		{name: "font_service_skipped", ref: "https://fonts.googleapis.com/css?family=Roboto"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			html := fmt.Sprintf(`<img src="%s">`, tc.ref)
			var buf bytes.Buffer
			zw := zip.NewWriter(&buf)
			l := NewAssetLocalizer(testLogger(t))

			localized, written := l.Localize(context.Background(), html, zw, "artifact-1")
			zw.Close()

			if len(written) != 0 {
				t.Errorf("expected no embedded assets, got %v", written)
			}
			if !strings.Contains(localized, tc.ref) {
				t.Errorf("failed reference must stay untouched, got:\n%s", localized)
			}
		})
	}
}

func TestLocalizeProtocolRelativeUsesHTTPS(t *testing.T) {
	// A protocol-relative reference is treated as https; the test server is
	// plain http so the fetch fails and the reference survives, which is
	// exactly the degraded behavior wanted for an unreachable asset.
	html := `<img src="//127.0.0.1:1/logo.png">`
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	l := NewAssetLocalizer(testLogger(t))

	localized, written := l.Localize(context.Background(), html, zw, "a")
	zw.Close()
	if len(written) != 0 {
		t.Errorf("expected no assets for unreachable host, got %v", written)
	}
	if !strings.Contains(localized, "//127.0.0.1:1/logo.png") {
		t.Errorf("unreachable reference must stay untouched")
	}
}

func TestLocalizeKeepsFailedPrefixSibling(t *testing.T) {
	// The bare reference resolves; its query-string sibling 404s. The
	// sibling must survive verbatim instead of having its prefix rewritten
	// into a broken assets/ path.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes())
	}))
	defer srv.Close()

	base := srv.URL + "/logo.png"
	versioned := base + "?v=2"
	html := fmt.Sprintf(`<img src="%s"> <img src="%s">`, base, versioned)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	l := NewAssetLocalizer(testLogger(t))

	localized, written := l.Localize(context.Background(), html, zw, "artifact-1")
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	if len(written) != 1 {
		t.Fatalf("expected one embedded asset, got %v", written)
	}
	if !strings.Contains(localized, `src="assets/img_001.png"`) {
		t.Errorf("resolved reference must be rewritten, got %q", localized)
	}
	if !strings.Contains(localized, fmt.Sprintf(`src="%s"`, versioned)) {
		t.Errorf("failed reference must stay untouched, got %q", localized)
	}
	if strings.Contains(localized, "assets/img_001.png?v=2") {
		t.Errorf("failed reference was partially rewritten: %q", localized)
	}
}

func TestLocalizePrefixSiblingsRewriteDeterministically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngBytes())
	}))
	defer srv.Close()

	base := srv.URL + "/logo.png"
	versioned := base + "?v=2"
	html := fmt.Sprintf(`<img src="%s"> <img src="%s">`, base, versioned)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	l := NewAssetLocalizer(testLogger(t))

	localized, written := l.Localize(context.Background(), html, zw, "artifact-1")
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	if len(written) != 2 {
		t.Fatalf("expected two embedded assets, got %v", written)
	}
	if !strings.Contains(localized, `src="assets/img_001.png"`) ||
		!strings.Contains(localized, `src="assets/img_002.png"`) {
		t.Errorf("both references must be rewritten to their own copies, got %q", localized)
	}
	if strings.Contains(localized, "?v=2") {
		t.Errorf("the longer reference must be replaced whole, got %q", localized)
	}
}

func TestCollectAssetRefsOrderAndDedupe(t *testing.T) {
	html := `
		<img src="https://example.com/a.png">
		<div style="background-image: url('https://example.com/b.png')"></div>
		<img src="https://example.com/a.png">
		<style>.hero { background: url(https://example.com/c.png); }</style>`

	refs := collectAssetRefs(html)
	// Pattern-major order: img srcs first, then url() values in document
	// order. The duplicate a.png reference collapses to its first sighting.
	want := []string{"https://example.com/a.png", "https://example.com/b.png", "https://example.com/c.png"}
	if len(refs) != len(want) {
		t.Fatalf("expected %d refs, got %d: %v", len(want), len(refs), refs)
	}
	for i, w := range want {
		if refs[i] != w {
			t.Errorf("ref %d: expected %q, got %q", i, w, refs[i])
		}
	}
}

func TestValidateImage(t *testing.T) {
	cases := []struct {
		name    string
		ref     string
		data    []byte
		wantExt string
		wantOK  bool
	}{
		{name: "png_with_url_ext", ref: "https://x/logo.png", data: pngBytes(), wantExt: ".png", wantOK: true},
		{name: "png_without_url_ext", ref: "https://x/image?id=9", data: pngBytes(), wantExt: ".png", wantOK: true},
		{name: "gif", ref: "https://x/anim.gif", data: append([]byte("GIF89a"), make([]byte, 100)...), wantExt: ".gif", wantOK: true},
		{name: "svg", ref: "https://x/pic", data: []byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg" width="10" height="10"></svg>`), wantExt: ".svg", wantOK: true},
		{name: "too_small", ref: "https://x/a.png", data: []byte{0x89, 'P', 'N', 'G'}, wantOK: false},
		{name: "not_image", ref: "https://x/a.png", data: []byte(strings.Repeat("plain text ", 10)), wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ext, ok := validateImage(tc.ref, tc.data)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v got %v", tc.wantOK, ok)
			}
			if ok && ext != tc.wantExt {
				t.Errorf("expected ext %q got %q", tc.wantExt, ext)
			}
		})
	}
}

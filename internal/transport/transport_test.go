package transport

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
)

func compressedServer(t *testing.T, encoding string, payload string) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	switch encoding {
	case "br":
		w := brotli.NewWriter(&buf)
		_, _ = w.Write([]byte(payload))
		_ = w.Close()
	case "gzip":
		w := gzip.NewWriter(&buf)
		_, _ = w.Write([]byte(payload))
		_ = w.Close()
	default:
		buf.WriteString(payload)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept-Encoding"); got != "gzip, br" {
			t.Errorf("unexpected Accept-Encoding %q", got)
		}
		if encoding != "" {
			w.Header().Set("Content-Encoding", encoding)
		}
		_, _ = w.Write(buf.Bytes())
	}))
}

func TestClientDecodesCompressedBodies(t *testing.T) {
	for _, encoding := range []string{"", "gzip", "br"} {
		srv := compressedServer(t, encoding, "data: hello\n\n")
		client := New(Options{ResponseHeaderTimeout: 5 * time.Second})
		req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
		resp, err := client.Do(req)
		if err != nil {
			srv.Close()
			t.Fatalf("%q: request failed: %v", encoding, err)
		}
		body, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		srv.Close()
		if err != nil {
			t.Fatalf("%q: read failed: %v", encoding, err)
		}
		if string(body) != "data: hello\n\n" {
			t.Fatalf("%q: unexpected body %q", encoding, body)
		}
		if resp.Header.Get("Content-Encoding") != "" {
			t.Fatalf("%q: expected Content-Encoding to be removed", encoding)
		}
	}
}

func TestClientRejectsUnknownEncoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Encoding", "zstd")
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := New(Options{}).Do(req); err == nil {
		t.Fatal("expected unsupported encoding error")
	}
}

func TestFingerprintTransportUsesCustomDialer(t *testing.T) {
	c := New(Options{Fingerprint: true})
	tr, ok := c.http.Transport.(*http.Transport)
	if !ok || tr.DialTLSContext == nil || tr.ForceAttemptHTTP2 {
		t.Fatal("expected fingerprint dialer on an HTTP/1.1 transport")
	}
	if plain := New(Options{}).http.Transport.(*http.Transport); plain.DialTLSContext != nil {
		t.Fatal("expected default TLS dialing without fingerprint")
	}
}

// Package transport builds the HTTP clients used to reach model backends.
package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	utls "github.com/refraction-networking/utls"
)

// Doer is the subset of *http.Client the backends need.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	// ResponseHeaderTimeout bounds the wait for upstream headers. Streaming
	// bodies are not subject to it.
	ResponseHeaderTimeout time.Duration
	// Fingerprint dials TLS with a browser ClientHello.
	Fingerprint bool
}

// Client sends requests with compressed-response support. It asks for gzip
// and brotli and decodes the body transparently.
type Client struct {
	http *http.Client
}

func New(opts Options) *Client {
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     !opts.Fingerprint,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: opts.ResponseHeaderTimeout,
		DialContext:           (&net.Dialer{Timeout: 15 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
	if opts.Fingerprint {
		base.DialTLSContext = safariTLSDialer()
	}
	return &Client{http: &http.Client{Transport: base}}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("Accept-Encoding") == "" {
		req.Header.Set("Accept-Encoding", "gzip, br")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if err := decodeBody(resp); err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func decodeBody(resp *http.Response) error {
	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	var decoded io.Reader
	switch encoding {
	case "", "identity":
		return nil
	case "br":
		decoded = brotli.NewReader(resp.Body)
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return fmt.Errorf("gzip response: %w", err)
		}
		decoded = zr
	default:
		return fmt.Errorf("unsupported content encoding %q", encoding)
	}
	resp.Body = &decodedBody{Reader: decoded, closer: resp.Body}
	resp.Header.Del("Content-Encoding")
	resp.Header.Del("Content-Length")
	resp.ContentLength = -1
	return nil
}

type decodedBody struct {
	io.Reader
	closer io.Closer
}

func (b *decodedBody) Close() error {
	return b.closer.Close()
}

func safariTLSDialer() func(ctx context.Context, network, addr string) (net.Conn, error) {
	var dialer net.Dialer
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		plainConn, err := dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		host, _, _ := net.SplitHostPort(addr)
		uConn := utls.UClient(plainConn, &utls.Config{ServerName: host}, utls.HelloSafari_Auto)
		if err := forceHTTP11ALPN(uConn); err != nil {
			_ = plainConn.Close()
			return nil, err
		}
		if err := uConn.HandshakeContext(ctx); err != nil {
			_ = plainConn.Close()
			return nil, err
		}
		if negotiated := uConn.ConnectionState().NegotiatedProtocol; negotiated != "" && negotiated != "http/1.1" {
			_ = uConn.Close()
			return nil, fmt.Errorf("unexpected ALPN protocol negotiated: %s", negotiated)
		}
		return uConn, nil
	}
}

// forceHTTP11ALPN keeps the fingerprinted connection on HTTP/1.1, which is
// what net/http expects from a custom TLS dialer.
func forceHTTP11ALPN(uConn *utls.UConn) error {
	if err := uConn.BuildHandshakeState(); err != nil {
		return err
	}
	for _, ext := range uConn.Extensions {
		if alpnExt, ok := ext.(*utls.ALPNExtension); ok {
			alpnExt.AlpnProtocols = []string{"http/1.1"}
			return nil
		}
	}
	return nil
}

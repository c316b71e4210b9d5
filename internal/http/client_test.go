// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package http

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/wneessen/waybar-location/internal/logger"
	"github.com/wneessen/waybar-location/internal/testhelper"
)

type testType struct {
	String string  `json:"string"`
	Int    int     `json:"int"`
	Float  float64 `json:"float"`
	Bool   bool    `json:"bool"`
}

const testFile = "../../testdata/testtype.json"

func TestNew(t *testing.T) {
	client := New(logger.New(slog.LevelInfo))
	if client == nil {
		t.Fatal("expected client to be non-nil")
	}
}

func TestClient_Get(t *testing.T) {
	t.Run("getting and serializing JSON should work", func(t *testing.T) {
		var gotQuery url.Values
		var gotHeader, gotAgent string
		fileFn := testhelper.FileResponse(t, testFile, 200)
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotQuery = req.URL.Query()
			gotHeader = req.Header.Get("X-Custom-Header")
			gotAgent = req.Header.Get("User-Agent")
			return fileFn(req)
		}

		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}
		query := url.Values{}
		query.Add("key", "value")
		headers := map[string]string{"X-Custom-Header": "custom-value"}

		target := new(testType)
		code, err := client.Get(t.Context(), "https://example.com", target, query, headers)
		if err != nil {
			t.Fatalf("failed to get JSON response: %s", err)
		}
		if code != 200 {
			t.Errorf("expected status code 200, got %d", code)
		}
		if target.String != "test" || target.Int != 123 || target.Float != 123.456 || !target.Bool {
			t.Errorf("unexpected target content: %+v", target)
		}
		if gotQuery.Get("key") != "value" {
			t.Errorf("expected query parameter to be sent, got %q", gotQuery.Encode())
		}
		if gotHeader != "custom-value" {
			t.Errorf("expected custom header to be sent, got %q", gotHeader)
		}
		if gotAgent != UserAgent {
			t.Errorf("expected user agent %q, got %q", UserAgent, gotAgent)
		}
	})
	t.Run("unmarshalling into non-pointer should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		var target testType
		_, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if !errors.Is(err, ErrNonPointerTarget) {
			t.Errorf("expected error to be %s, got %s", ErrNonPointerTarget, err)
		}
	})
	t.Run("parsing an invalid url should fail", func(t *testing.T) {
		client := New(logger.New(slog.LevelInfo))
		target := new(testType)
		_, err := client.Get(t.Context(), "http://example.com/xyz%", target, nil, nil)
		if err == nil {
			t.Fatal("expected get to fail")
		}
		if !strings.Contains(err.Error(), "failed to parse URL") {
			t.Errorf("expected error to contain 'failed to parse URL', got %s", err)
		}
	})
	t.Run("get request fails", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return nil, errors.New("intentionally failing")
		}
		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		if _, err := client.Get(t.Context(), "https://example.com", target, nil, nil); err == nil {
			t.Fatal("expected get request to fail")
		}
	})
	t.Run("server errors are not decoded", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 503,
				Status:     "503 Service Unavailable",
				Body:       io.NopCloser(bytes.NewBufferString("<html>busy</html>")),
				Header:     make(stdhttp.Header),
			}, nil
		}
		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		code, err := client.Get(t.Context(), "https://example.com", target, nil, nil)
		if !errors.Is(err, ErrServerError) {
			t.Errorf("expected error to be %s, got %s", ErrServerError, err)
		}
		if code != 503 {
			t.Errorf("expected status code 503, got %d", code)
		}
	})
	t.Run("broken body fails decoding", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			return &stdhttp.Response{
				StatusCode: 200,
				Body:       &failReadCloser{},
				Header:     make(stdhttp.Header),
			}, nil
		}
		client := New(logger.NewLogger(slog.LevelInfo, io.Discard))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		if _, err := client.Get(t.Context(), "https://example.com", target, nil, nil); err == nil {
			t.Fatal("expected get request to fail")
		}
	})
}

func TestClient_Post(t *testing.T) {
	t.Run("post request succeeds", func(t *testing.T) {
		var gotMethod, gotBody string
		fileFn := testhelper.FileResponse(t, testFile, 200)
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			gotMethod = req.Method
			data, _ := io.ReadAll(req.Body)
			gotBody = string(data)
			return fileFn(req)
		}

		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		_, err := client.Post(t.Context(), "https://example.com", target, bytes.NewBufferString(`{"a":1}`), nil)
		if err != nil {
			t.Fatalf("post request failed: %s", err)
		}
		if gotMethod != stdhttp.MethodPost {
			t.Errorf("expected method POST, got %s", gotMethod)
		}
		if gotBody != `{"a":1}` {
			t.Errorf("expected body to be forwarded, got %q", gotBody)
		}
	})
}

func TestClient_PostWithTimeout(t *testing.T) {
	t.Run("post request times out", func(t *testing.T) {
		rtFn := func(req *stdhttp.Request) (*stdhttp.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		}
		client := New(logger.New(slog.LevelInfo))
		client.Transport = testhelper.MockRoundTripper{Fn: rtFn}

		target := new(testType)
		_, err := client.PostWithTimeout(context.Background(), "https://example.com", target, nil, nil,
			time.Millisecond)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected error to be %s, got %s", context.DeadlineExceeded, err)
		}
	})
}

type failReadCloser struct{}

func (failReadCloser) Read(p []byte) (int, error) { return len(p), nil }
func (failReadCloser) Close() error               { return errors.New("failed to close") }

// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package testhelper

import (
	"net/http"
	"os"
	"testing"
)

// IntegrationTestEnv enables tests that talk to the real geolocation and geocoding APIs.
const IntegrationTestEnv = "PERFORM_INTEGRATION_TESTS"

// MockRoundTripper is a http.RoundTripper that hands every request to Fn.
type MockRoundTripper struct {
	Fn func(req *http.Request) (*http.Response, error)
}

func (m MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.Fn(req)
}

// PerformIntegrationTests skips the calling test unless integration tests were requested.
func PerformIntegrationTests(t *testing.T) {
	t.Helper()
	if os.Getenv(IntegrationTestEnv) == "" {
		t.Skipf("skipping integration test, set %s to run it", IntegrationTestEnv)
	}
}

// FileResponse returns a round trip function that answers with the content of the given file.
func FileResponse(t *testing.T, file string, status int) func(*http.Request) (*http.Response, error) {
	t.Helper()
	return func(*http.Request) (*http.Response, error) {
		data, err := os.Open(file)
		if err != nil {
			t.Fatalf("failed to open JSON response file: %s", err)
		}
		return &http.Response{
			StatusCode: status,
			Body:       data,
			Header:     make(http.Header),
		}, nil
	}
}

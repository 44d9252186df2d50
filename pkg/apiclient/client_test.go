package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/langowen/cryant/pkg/entities"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

type FakeRoundTripper struct {
	message string
	status  int
	last    *http.Request
}

func (rt *FakeRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	rt.last = r
	if err := r.Context().Err(); err != nil {
		return nil, err
	}
	res := &http.Response{
		StatusCode: rt.status,
		Status:     fmt.Sprintf("%d %s", rt.status, http.StatusText(rt.status)),
		Body:       io.NopCloser(strings.NewReader(rt.message)),
		Request:    r,
		Header:     make(http.Header),
	}
	res.Header.Set("Content-Type", "application/json")
	return res, nil
}

type payload struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newTestClient(rt http.RoundTripper) *Client {
	header := http.Header{}
	header.Set("x-test-key", "secret")
	return New("test", "http://localhost:4243/", header, WithHTTPClient(&http.Client{Transport: rt}))
}

func TestFetchAttachesHeaderAndQuery(t *testing.T) {
	t.Parallel()

	rt := &FakeRoundTripper{message: `{"name":"btc","value":1.5}`, status: http.StatusOK}
	c := newTestClient(rt)

	var out payload
	query := url.Values{}
	query.Set("ids", "bitcoin,ethereum")

	if err := c.Fetch(context.Background(), "test.Fetch", "/simple/price", query, JSON(&out, "name", "value")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if out.Name != "btc" || out.Value != 1.5 {
		t.Fatalf("unexpected payload: %#v", out)
	}
	if got := rt.last.Header.Get("x-test-key"); got != "secret" {
		t.Fatalf("api key header = %q", got)
	}
	if got := rt.last.URL.Path; got != "/simple/price" {
		t.Fatalf("path = %q", got)
	}
	if got := rt.last.URL.Query().Get("ids"); got != "bitcoin,ethereum" {
		t.Fatalf("ids = %q", got)
	}
}

func TestFetchDoesNotMutateCallerClient(t *testing.T) {
	t.Parallel()

	rt := &FakeRoundTripper{message: `{}`, status: http.StatusOK}
	hc := &http.Client{Transport: rt}

	New("test", "http://localhost:4243", http.Header{"X-Key": {"k"}}, WithHTTPClient(hc), WithTimeout(time.Second))

	if hc.Transport != rt || hc.Timeout != 0 {
		t.Fatalf("caller's http.Client was modified: %#v", hc)
	}
}

type errorCase struct {
	name    string
	status  int
	message string
	decode  func() Decoder
	kind    entities.Kind
	contain string
}

func TestFetchErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []errorCase{
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			message: `oops`,
			decode:  func() Decoder { return JSON(&payload{}) },
			kind:    entities.KindUpstream,
			contain: "oops",
		},
		{
			name:    "apilayer error body",
			status:  http.StatusUnauthorized,
			message: `{"message":"Invalid authentication credentials"}`,
			decode:  func() Decoder { return JSON(&payload{}) },
			kind:    entities.KindUpstream,
			contain: "Invalid authentication credentials",
		},
		{
			name:    "coingecko rate limit body",
			status:  http.StatusTooManyRequests,
			message: `{"status":{"error_code":429,"error_message":"You've exceeded the Rate Limit"}}`,
			decode:  func() Decoder { return JSON(&payload{}) },
			kind:    entities.KindUpstream,
			contain: "exceeded the Rate Limit",
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			message: `<html></html>`,
			decode:  func() Decoder { return JSON(&payload{}) },
			kind:    entities.KindDecode,
		},
		{
			name:    "missing field",
			status:  http.StatusOK,
			message: `{"name":"btc"}`,
			decode:  func() Decoder { return JSON(&payload{}, "name", "value") },
			kind:    entities.KindDecode,
			contain: `"value"`,
		},
		{
			name:    "null field",
			status:  http.StatusOK,
			message: `{"name":null,"value":1}`,
			decode:  func() Decoder { return JSON(&payload{}, "name", "value") },
			kind:    entities.KindDecode,
		},
		{
			name:    "wrong type",
			status:  http.StatusOK,
			message: `{"name":"btc","value":"high"}`,
			decode:  func() Decoder { return JSON(&payload{}, "name", "value") },
			kind:    entities.KindDecode,
		},
		{
			name:    "list expected",
			status:  http.StatusOK,
			message: `{"name":"btc","value":1}`,
			decode:  func() Decoder { return JSONList(&[]payload{}, "name") },
			kind:    entities.KindDecode,
			contain: "expected array",
		},
		{
			name:    "list item missing field",
			status:  http.StatusOK,
			message: `[{"name":"btc","value":1},{"value":2}]`,
			decode:  func() Decoder { return JSONList(&[]payload{}, "name", "value") },
			kind:    entities.KindDecode,
			contain: "item 1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := newTestClient(&FakeRoundTripper{message: test.message, status: test.status})

			err := c.Fetch(context.Background(), "test.Fetch", "/x", nil, test.decode())
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := entities.KindOf(err); got != test.kind {
				t.Fatalf("kind = %v, expected %v (err: %v)", got, test.kind, err)
			}
			if test.contain != "" && !strings.Contains(err.Error(), test.contain) {
				t.Fatalf("error %q does not contain %q", err.Error(), test.contain)
			}
		})
	}
}

func TestFetchTransportErrors(t *testing.T) {
	t.Parallel()

	t.Run("connection refused", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		addr := ts.URL
		ts.Close()

		c := New("test", addr, http.Header{})
		err := c.Fetch(context.Background(), "test.Fetch", "/x", nil, JSON(&payload{}))
		if !errors.Is(err, entities.ErrTransport) {
			t.Fatalf("expected transport error, got %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer ts.Close()

		c := New("test", ts.URL, http.Header{}, WithTimeout(20*time.Millisecond))
		err := c.Fetch(context.Background(), "test.Fetch", "/x", nil, JSON(&payload{}))
		if !errors.Is(err, entities.ErrTransport) {
			t.Fatalf("expected transport error, got %v", err)
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		c := newTestClient(&FakeRoundTripper{message: `{}`, status: http.StatusOK})
		err := c.Fetch(ctx, "test.Fetch", "/x", nil, JSON(&payload{}))
		if !errors.Is(err, entities.ErrTransport) {
			t.Fatalf("expected transport error, got %v", err)
		}
	})
}

func TestBaseURLTrailingSlash(t *testing.T) {
	t.Parallel()

	c := New("test", "https://api.example.com/v3/", http.Header{})
	if c.BaseURL() != "https://api.example.com/v3" {
		t.Fatalf("BaseURL = %q", c.BaseURL())
	}
}

func TestObjectOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		depth int
		leaf  gjson.Type
		body  string
		ok    bool
	}{
		{"nested numbers", "", 2, gjson.Number, `{"bitcoin":{"usd":1,"eur":2}}`, true},
		{"empty object", "", 2, gjson.Number, `{}`, true},
		{"null body", "", 2, gjson.Number, `null`, false},
		{"null inner object", "", 2, gjson.Number, `{"bitcoin":null}`, false},
		{"null leaf", "", 2, gjson.Number, `{"bitcoin":{"usd":null}}`, false},
		{"string leaf", "", 2, gjson.Number, `{"bitcoin":{"usd":"1"}}`, false},
		{"string map at path", "symbols", 1, gjson.String, `{"symbols":{"USD":"United States Dollar"}}`, true},
		{"missing path", "symbols", 1, gjson.String, `{"success":true}`, false},
		{"null at path", "symbols", 1, gjson.String, `{"symbols":{"USD":null}}`, false},
		{"invalid json", "", 1, gjson.Number, `{"a":`, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ObjectOf(test.path, test.depth, test.leaf)("test.ObjectOf", []byte(test.body))
			if test.ok {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, entities.ErrDecode) {
				t.Fatalf("expected decode error, got %v", err)
			}
		})
	}
}

func TestAllStopsAtFirstFailure(t *testing.T) {
	t.Parallel()

	var out map[string]map[string]float64
	decode := All(ObjectOf("", 2, gjson.Number), JSON(&out))

	if err := decode("test.All", []byte(`{"bitcoin":{"usd":null}}`)); !errors.Is(err, entities.ErrDecode) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if out != nil {
		t.Fatalf("body must not be decoded after a failed check, got %#v", out)
	}
}

func TestUpstreamMessageKeepsRunes(t *testing.T) {
	t.Parallel()

	body := strings.Repeat("€", 100)

	msg := upstreamMessage([]byte(body), http.StatusBadGateway)
	if !utf8.ValidString(msg) {
		t.Fatalf("message is not valid utf-8: %q", msg)
	}
	if len(msg) != 198 {
		t.Fatalf("expected 66 whole runes (198 bytes), got %d bytes", len(msg))
	}

	c := newTestClient(&FakeRoundTripper{message: body, status: http.StatusBadGateway})
	err := c.Fetch(context.Background(), "test.Fetch", "/x", nil, JSON(&payload{}))
	if !errors.Is(err, entities.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !utf8.ValidString(err.Error()) {
		t.Fatalf("error is not valid utf-8: %q", err.Error())
	}
}

func TestUpstreamMessageShortBody(t *testing.T) {
	t.Parallel()

	if got := upstreamMessage([]byte("  bad gateway  "), http.StatusBadGateway); got != "bad gateway" {
		t.Fatalf("message = %q", got)
	}
	if got := upstreamMessage(nil, http.StatusBadGateway); got != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("message = %q", got)
	}
}

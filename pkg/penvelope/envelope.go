// Package penvelope implements the request envelope every HTTP-speaking
// backend adapter issues calls through: throttling, retry with backoff,
// signed-URL refresh, range headers, default-header merging, and
// status-code-to-error mapping. It is the only layer permitted to
// construct an UnhandledProviderError from a raw backend response.
package penvelope

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fileprovider/gateway/pkg/perr"
	"github.com/fileprovider/gateway/pkg/version"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// URLFunc resolves a request URL, optionally freshly on every attempt.
// This is how pre-signed URLs (which expire) are regenerated on retry.
type URLFunc func(ctx context.Context) (string, error)

// Request describes one backend call.
type Request struct {
	Method  string
	URL     string  // used when URLFn is nil
	URLFn   URLFunc // takes precedence over URL when set
	Headers http.Header
	Body    io.Reader

	// RangeLo/RangeHi add a Range: bytes=lo-hi header; either may be nil
	// to leave that bound open.
	RangeLo, RangeHi *int64

	// Expects lists acceptable status codes. Anything else is converted
	// to an error of Throws via perr.AsResponseError.
	Expects []int
	Throws  perr.Op

	// NoAuthHeader strips the envelope's default Authorization header,
	// for requests against a pre-signed URL that embeds its own auth.
	NoAuthHeader bool

	// Retry overrides the envelope's default retry count for this call.
	// -1 means "use the envelope default".
	Retry int
}

// Envelope wraps an *http.Client with the provider's default headers,
// a shared Throttle, and the retry policy. One Envelope is held per
// provider instance, mirroring "one session per loop per provider
// instance" — in Go, one *http.Client is already safe for concurrent use
// by every goroutine the provider spawns, so there is no per-goroutine
// session map to maintain; the client itself plays that role.
type Envelope struct {
	Client         *http.Client
	DefaultHeaders http.Header
	Throttle       *Throttle

	// DefaultRetry is the number of retries (not counting the first
	// attempt) applied when Request.Retry is -1.
	DefaultRetry int

	// RetryOn lists status codes eligible for retry. Defaults to
	// {408, 502, 503, 504} per spec.md §4.5 step 7.
	RetryOn map[int]bool

	// Sleep is called between retry attempts; defaults to time.Sleep.
	// Tests override it to avoid real waits.
	Sleep func(time.Duration)

	closed bool
}

// NewEnvelope builds an Envelope with the package defaults. The default
// headers identify the gateway to the backend it is calling, the way
// any well-behaved HTTP client does, stamped with version.Version() so
// a backend's access log can tell which build made the request.
func NewEnvelope(client *http.Client, throttle *Throttle) *Envelope {
	if client == nil {
		client = &http.Client{}
	}
	headers := http.Header{}
	headers.Set("User-Agent", "fileprovider-gateway/"+version.Version())
	return &Envelope{
		Client:         client,
		DefaultHeaders: headers,
		Throttle:       throttle,
		DefaultRetry:   2,
		RetryOn: map[int]bool{
			http.StatusRequestTimeout:     true,
			http.StatusBadGateway:         true,
			http.StatusServiceUnavailable: true,
			http.StatusGatewayTimeout:     true,
		},
		Sleep: time.Sleep,
	}
}

// retryableError wraps a non-2xx response awaiting another attempt; it is
// unwrapped to a perr.UnhandledProviderError if retries are exhausted.
type retryableError struct {
	resp *http.Response
	body []byte
}

func (e *retryableError) Error() string { return "retryable backend response" }

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Close force-closes idle connections held by the envelope's client. The
// original destroys per-loop sessions in the provider's destructor
// because in-flight responses (the copy/move pipeline's download stream)
// outlive the call that created them; the Go equivalent is simply not
// calling Close while any ResponseStreamReader from this envelope is
// still being read, and calling it once the provider itself is done.
func (e *Envelope) Close() error {
	e.closed = true
	e.Client.CloseIdleConnections()
	return nil
}

// Do issues req, retrying on RetryOn status codes with a wait of
// (1 + n_retry - remaining) * 2 seconds between attempts, and returns the
// live *http.Response on success — the caller owns the response body and
// must close it (directly, or via a pstream.ResponseStreamReader). A body
// that implements io.Seeker is rewound to its starting offset before each
// retry; any other non-nil body is sent once, with retries disabled for
// the call.
func (e *Envelope) Do(ctx context.Context, r *Request) (*http.Response, error) {
	release, err := e.Throttle.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	retries := e.DefaultRetry
	if r.Retry >= 0 {
		retries = r.Retry
	}

	seeker, rewindable := r.Body.(io.Seeker)
	var bodyStart int64
	if rewindable {
		bodyStart, _ = seeker.Seek(0, io.SeekCurrent)
	} else if r.Body != nil {
		retries = 0
	}

	// The attempt count is delegated to backoff.WithMaxRetries; the
	// inter-attempt wait follows spec.md §4.5 step 7's own formula
	// exactly ((1 + n_retry - remaining) * 2 seconds), applied manually
	// below, so the base policy itself waits zero between attempts.
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(retries))

	var resp *http.Response
	attempt := 0
	opErr := backoff.Retry(func() error {
		attempt++
		remaining := retries - (attempt - 1)
		url := r.URL
		if r.URLFn != nil {
			u, uerr := r.URLFn(ctx)
			if uerr != nil {
				return backoff.Permanent(uerr)
			}
			url = u
		}
		if rewindable && attempt > 1 {
			if _, serr := seeker.Seek(bodyStart, io.SeekStart); serr != nil {
				return backoff.Permanent(serr)
			}
		}

		httpReq, rerr := http.NewRequestWithContext(ctx, r.Method, url, r.Body)
		if rerr != nil {
			return backoff.Permanent(rerr)
		}
		applyHeaders(httpReq, e.DefaultHeaders, r.Headers, r.NoAuthHeader)
		applyRange(httpReq, r.RangeLo, r.RangeHi)

		res, derr := e.Client.Do(httpReq)
		if derr != nil {
			if attempt > retries {
				return backoff.Permanent(derr)
			}
			return derr
		}

		if statusExpected(res.StatusCode, r.Expects) {
			resp = res
			return nil
		}

		body, _ := io.ReadAll(res.Body)
		res.Body.Close()

		if e.RetryOn[res.StatusCode] && attempt <= retries {
			// sleep (1 + n_retry - remaining) * 2 seconds, per spec.md §4.5
			// step 7, overriding the backoff policy's own interval.
			e.Sleep(time.Duration(1+retries-remaining) * 2 * time.Second)
			return &retryableError{resp: res, body: body}
		}

		return backoff.Permanent(perr.AsResponseError(r.Throws, r.Method, url, res.StatusCode, nil, body))
	}, policy)

	if opErr != nil {
		var re *retryableError
		if errors.As(opErr, &re) {
			return nil, perr.AsResponseError(r.Throws, r.Method, r.URL, re.resp.StatusCode, nil, re.body)
		}
		return nil, opErr
	}
	return resp, nil
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE HELPERS

func applyHeaders(req *http.Request, defaults, extra http.Header, noAuth bool) {
	for k, vs := range defaults {
		if noAuth && k == "Authorization" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

func applyRange(req *http.Request, lo, hi *int64) {
	if lo == nil && hi == nil {
		return
	}
	val := "bytes="
	if lo != nil {
		val += strconv.FormatInt(*lo, 10)
	}
	val += "-"
	if hi != nil {
		val += strconv.FormatInt(*hi, 10)
	}
	req.Header.Set("Range", val)
}

func statusExpected(code int, expects []int) bool {
	if len(expects) == 0 {
		return code >= 200 && code < 300
	}
	for _, e := range expects {
		if e == code {
			return true
		}
	}
	return false
}

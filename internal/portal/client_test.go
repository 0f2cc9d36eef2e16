package portal

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ResultsMonitor/internal/model"
	"ResultsMonitor/internal/testutil"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Options{
		LoginDomain: baseURL,
		LoginPath:   "/cas/login?service=https://results.example/shiro-cas",
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)
	return c
}

func TestFetchResults_LogsInAndReturnsResultsPage(t *testing.T) {
	results := testutil.ResultsPage(testutil.Row("March", "CS101", "", "", "72"))
	p := testutil.NewPortal(t, "alice", "s3cret", results)
	c := newTestClient(t, p.URL())

	page, err := c.FetchResults(context.Background(), model.Credentials{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.Status)
	require.Equal(t, string(results), string(page.Body))
	require.True(t, strings.HasSuffix(page.URL, "/results"), page.URL)

	posts := p.Posts()
	require.Len(t, posts, 1)
	require.Equal(t, testutil.LoginTicket, posts[0].Get("lt"))
	require.Equal(t, "e1s1", posts[0].Get("execution"))
	require.Equal(t, "submit", posts[0].Get("_eventId"))
	require.Equal(t, "alice", posts[0].Get("username"))
	require.Equal(t, []string{"s1"}, p.PostCookies(), "continuity cookie must be replayed on the POST")
}

func TestFetchResults_BadCredentialsStillReturnPage(t *testing.T) {
	p := testutil.NewPortal(t, "alice", "s3cret", testutil.ResultsPage())
	c := newTestClient(t, p.URL())

	page, err := c.FetchResults(context.Background(), model.Credentials{Username: "alice", Password: "wrong"})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, page.Status)
	require.Contains(t, string(page.Body), `name="lt"`)
}

func TestFetchResults_FreshSessionEveryCall(t *testing.T) {
	p := testutil.NewPortal(t, "alice", "s3cret", testutil.ResultsPage())
	c := newTestClient(t, p.URL())
	creds := model.Credentials{Username: "alice", Password: "s3cret"}

	for i := 0; i < 2; i++ {
		_, err := c.FetchResults(context.Background(), creds)
		require.NoError(t, err)
	}
	require.Equal(t, []string{"s1", "s2"}, p.PostCookies())
}

func TestFetchResults_ServerErrorIsTransient(t *testing.T) {
	p := testutil.NewPortal(t, "alice", "s3cret", nil)
	p.FailWith(http.StatusServiceUnavailable)
	c := newTestClient(t, p.URL())

	_, err := c.FetchResults(context.Background(), model.Credentials{Username: "alice", Password: "s3cret"})
	require.Error(t, err)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusServiceUnavailable, se.Code)
	require.True(t, IsTransient(err))
}

func TestFetchResults_UnreachablePortalIsTransient(t *testing.T) {
	p := testutil.NewPortal(t, "alice", "s3cret", nil)
	addr := p.URL()
	p.Server.Close()
	c := newTestClient(t, addr)

	_, err := c.FetchResults(context.Background(), model.Credentials{Username: "alice", Password: "s3cret"})
	require.Error(t, err)
	require.True(t, IsTransient(err))
}

func TestResolveAction(t *testing.T) {
	c, err := NewClient(Options{
		LoginDomain: "https://sso.example.ac.za/",
		LoginPath:   "/cas/login?service=https://apps.example.ac.za/results",
	})
	require.NoError(t, err)

	tests := []struct {
		action string
		want   string
	}{
		{"/cas/login;jsessionid=abc?service=x", "https://sso.example.ac.za/cas/login;jsessionid=abc?service=x"},
		{"login?service=x", "https://sso.example.ac.za/login?service=x"},
		{"https://other.example/cas/login", "https://other.example/cas/login"},
		{"", "https://sso.example.ac.za/cas/login?service=https://apps.example.ac.za/results"},
		{"   ", "https://sso.example.ac.za/cas/login?service=https://apps.example.ac.za/results"},
	}
	for _, tt := range tests {
		if got := c.resolveAction(tt.action); got != tt.want {
			t.Errorf("resolveAction(%q) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestNewClient_RejectsRelativeDomain(t *testing.T) {
	_, err := NewClient(Options{LoginDomain: "sso.example.ac.za", LoginPath: "/cas/login"})
	require.Error(t, err)
}

func TestNewClient_RejectsDomainPath(t *testing.T) {
	_, err := NewClient(Options{LoginDomain: "https://sso.example.ac.za/sso", LoginPath: "/cas/login"})
	require.Error(t, err)

	c, err := NewClient(Options{LoginDomain: "https://sso.example.ac.za/", LoginPath: "/cas/login"})
	require.NoError(t, err)
	require.Equal(t, "https://sso.example.ac.za/cas/login", c.LoginURL())
}

func TestIsTransient(t *testing.T) {
	require.False(t, IsTransient(nil))
	require.False(t, IsTransient(errors.New("parse login page: bad html")))
	require.True(t, IsTransient(&StatusError{Code: 502, URL: "https://sso.example"}))
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsTransient_TransportErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", &url.Error{Op: "Get", URL: "https://sso.example", Err: timeoutError{}}, true},
		{"connection refused", &url.Error{Op: "Get", URL: "https://sso.example", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}, true},
		{"connection cut", &url.Error{Op: "Post", URL: "https://sso.example", Err: io.EOF}, true},
		{"unsupported scheme", &url.Error{Op: "Get", URL: "ftp://sso.example", Err: errors.New(`unsupported protocol scheme "ftp"`)}, false},
		{"redirect loop", &url.Error{Op: "Get", URL: "https://sso.example", Err: errors.New("stopped after 10 redirects")}, false},
		{"bad certificate", &url.Error{Op: "Get", URL: "https://sso.example", Err: &tls.CertificateVerificationError{Err: errors.New("x509: certificate signed by unknown authority")}}, false},
	}
	for _, tt := range tests {
		if got := IsTransient(tt.err); got != tt.want {
			t.Errorf("%s: IsTransient = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFetchResults_UnsupportedSchemeIsPermanent(t *testing.T) {
	c, err := NewClient(Options{LoginDomain: "ftp://sso.example.ac.za", LoginPath: "/cas/login"})
	require.NoError(t, err)

	_, err = c.FetchResults(context.Background(), model.Credentials{Username: "alice", Password: "s3cret"})
	require.Error(t, err)
	require.False(t, IsTransient(err))
}

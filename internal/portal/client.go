package portal

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"ResultsMonitor/internal/model"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Page is the raw body returned after the credential POST.
type Page struct {
	URL    string
	Status int
	Body   []byte
}

// Options configures a Client.
type Options struct {
	LoginDomain string // e.g. https://sso-legacy.sun.ac.za
	LoginPath   string // path and query of the CAS login page
	UserAgent   string
	Timeout     time.Duration
	Proxy       string
}

// Client performs the CAS form login. It keeps no session between calls:
// every FetchResults logs in from scratch with a fresh cookie jar.
type Client struct {
	domain    *url.URL
	loginURL  *url.URL
	userAgent string
	timeout   time.Duration
	proxy     string
}

// NewClient validates the login endpoint and returns a Client.
func NewClient(opts Options) (*Client, error) {
	domain, err := url.Parse(strings.TrimRight(opts.LoginDomain, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse login domain: %w", err)
	}
	if domain.Scheme == "" || domain.Host == "" {
		return nil, fmt.Errorf("login domain %q must be an absolute URL", opts.LoginDomain)
	}
	// Form actions resolve against the domain root, so a path prefix would be lost.
	if domain.Path != "" || domain.RawQuery != "" {
		return nil, fmt.Errorf("login domain %q must not carry a path or query", opts.LoginDomain)
	}
	domain.Path = "/"

	loginRef, err := url.Parse(opts.LoginPath)
	if err != nil {
		return nil, fmt.Errorf("parse login path: %w", err)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		domain:    domain,
		loginURL:  domain.ResolveReference(loginRef),
		userAgent: ua,
		timeout:   timeout,
		proxy:     opts.Proxy,
	}, nil
}

func (c *Client) Name() string { return "cas:" + c.domain.Host }

// LoginURL returns the fully resolved login page URL.
func (c *Client) LoginURL() string { return c.loginURL.String() }

func (c *Client) newSession() (*resty.Client, http.CookieJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, nil, err
	}
	client := resty.New()
	client.SetCookieJar(jar)
	client.SetTimeout(c.timeout)
	client.SetHeader("User-Agent", c.userAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	if c.proxy != "" {
		client.SetProxy(c.proxy)
	}
	return client, jar, nil
}

// FetchResults logs in and returns the page the portal renders after the
// credential POST. Bad credentials still produce a page; callers detect them
// by decoding nothing from it.
func (c *Client) FetchResults(ctx context.Context, creds model.Credentials) (*Page, error) {
	session, jar, err := c.newSession()
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	res, err := session.R().
		SetContext(ctx).
		Get(c.loginURL.String())
	if err != nil {
		return nil, fmt.Errorf("fetch login page: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return nil, fmt.Errorf("fetch login page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse login page: %w", err)
	}
	continuity := jar.Cookies(c.loginURL)
	if len(continuity) == 0 {
		log.Printf("[WARN] login page set no cookies, the credential POST will likely be rejected")
	}

	fields := MergeCredentials(HarvestForm(doc), creds)
	action := c.resolveAction(doc.Find("form").First().AttrOr("action", ""))

	res, err = session.R().
		SetContext(ctx).
		SetHeader("Referer", c.loginURL.String()).
		SetFormDataFromValues(fields).
		Post(action)
	if err != nil {
		return nil, fmt.Errorf("submit credentials: %w", err)
	}
	if err := checkStatus(res); err != nil {
		return nil, fmt.Errorf("submit credentials: %w", err)
	}

	pageURL := action
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		pageURL = res.RawResponse.Request.URL.String()
	}
	return &Page{URL: pageURL, Status: res.StatusCode(), Body: res.Body()}, nil
}

// resolveAction resolves the form action against the login domain rather than
// the page URL. A missing action submits back to the login page.
func (c *Client) resolveAction(action string) string {
	action = strings.TrimSpace(action)
	if action == "" {
		return c.loginURL.String()
	}
	ref, err := url.Parse(action)
	if err != nil {
		log.Printf("[WARN] unparseable form action %q, posting to login page", action)
		return c.loginURL.String()
	}
	return c.domain.ResolveReference(ref).String()
}

func checkStatus(res *resty.Response) error {
	if res.StatusCode() >= http.StatusInternalServerError {
		return &StatusError{Code: res.StatusCode(), URL: res.Request.URL}
	}
	return nil
}

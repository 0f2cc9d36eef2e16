// Package testutil provides a fake CAS portal and results page builders for tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

// Row returns the six cells of one results row. The last cell is unused by the decoder.
func Row(month, module, classMark, progressMark, finalMark string) []string {
	return []string{month, module, classMark, progressMark, finalMark, "&nbsp;"}
}

// ResultsPage renders a results table. Each string is the inner HTML of one
// PortletText1 span; rows may have any number of cells.
func ResultsPage(rows ...[]string) []byte {
	var b strings.Builder
	b.WriteString(`<html><body><table width="100%">`)
	b.WriteString(`<tr><td><b>Month</b></td><td><b>Module</b></td></tr>`)
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, `<td><span class="PortletText1">%s</span></td>`, cell)
		}
		b.WriteString("</tr>")
	}
	b.WriteString(`</table></body></html>`)
	return []byte(b.String())
}

// LoginPage renders a CAS login form posting to action.
func LoginPage(action, loginTicket string) []byte {
	return []byte(fmt.Sprintf(`<html><body>
<form id="fm1" method="post" action="%s">
  <input id="username" name="username" type="text" value="" />
  <input id="password" name="password" type="password" value="" />
  <input type="hidden" name="lt" value="%s" />
  <input type="hidden" name="execution" value="e1s1" />
  <input type="hidden" name="_eventId" value="submit" />
  <input type="submit" value="LOGIN" />
</form></body></html>`, action, loginTicket))
}

const (
	SessionCookie = "JSESSIONID"
	LoginTicket   = "LT-42-portal"
	FormAction    = "/cas/login?service=https%3A%2F%2Fresults.example%2Fshiro-cas"
)

// Portal is a fake CAS server. GET /cas/login sets a session cookie and serves
// the login form; a POST carrying that cookie, the login ticket and the right
// credentials redirects to /results.
type Portal struct {
	Server   *httptest.Server
	Username string
	Password string

	mu         sync.Mutex
	results    []byte
	session    int
	status     int
	posts      []url.Values
	postCookie []string
}

// NewPortal starts a fake portal that is closed when the test ends.
func NewPortal(t testing.TB, username, password string, results []byte) *Portal {
	p := &Portal{Username: username, Password: password, results: results}
	mux := http.NewServeMux()
	mux.HandleFunc("/cas/login", p.handleLogin)
	mux.HandleFunc("/results", p.handleResults)
	p.Server = httptest.NewServer(mux)
	t.Cleanup(p.Server.Close)
	return p
}

// URL is the portal's base URL.
func (p *Portal) URL() string { return p.Server.URL }

// SetResults replaces the page served after a successful login.
func (p *Portal) SetResults(page []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.results = page
}

// FailWith makes every request answer with status until reset with 0.
func (p *Portal) FailWith(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

// Posts returns the credential forms received so far.
func (p *Portal) Posts() []url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]url.Values(nil), p.posts...)
}

// PostCookies returns the session cookie value seen on each credential POST.
func (p *Portal) PostCookies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.postCookie...)
}

func (p *Portal) handleLogin(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.status != 0 {
		w.WriteHeader(p.status)
		return
	}

	switch r.Method {
	case http.MethodGet:
		p.session++
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: fmt.Sprintf("s%d", p.session), Path: "/cas"})
		w.Write(LoginPage(FormAction, LoginTicket))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		p.posts = append(p.posts, r.PostForm)
		cookie := ""
		if c, err := r.Cookie(SessionCookie); err == nil {
			cookie = c.Value
		}
		p.postCookie = append(p.postCookie, cookie)

		ok := cookie == fmt.Sprintf("s%d", p.session) &&
			r.PostForm.Get("lt") == LoginTicket &&
			r.URL.Query().Get("service") != "" &&
			r.PostForm.Get("username") == p.Username &&
			r.PostForm.Get("password") == p.Password
		if !ok {
			// CAS renders the form again with a 200 on bad credentials
			w.Write(LoginPage(FormAction, LoginTicket))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "auth", Value: "granted", Path: "/"})
		http.Redirect(w, r, "/results", http.StatusFound)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (p *Portal) handleResults(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, err := r.Cookie("auth"); err != nil || c.Value != "granted" {
		w.Write([]byte("<html><body>Not logged in</body></html>"))
		return
	}
	w.Write(p.results)
}

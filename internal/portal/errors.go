package portal

import (
	"errors"
	"fmt"
	"io"
	"net"
)

// StatusError is returned when the portal answers with a server error.
// Login failures are not reported this way: the portal renders them with a 200.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("portal returned status %d for %s", e.Code, e.URL)
}

// IsTransient reports whether err is worth another attempt on the next cycle:
// server errors, timeouts, socket-level failures and connections cut short.
// Transport errors such as an unsupported scheme, a redirect loop or a failed
// certificate check are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF)
}

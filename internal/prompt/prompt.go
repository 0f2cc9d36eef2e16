// Package prompt asks for portal credentials on the terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"ResultsMonitor/internal/model"
)

// Prompter reads a username line and a password. ReadPassword, when set, reads
// the password without echo; otherwise the password is read as a plain line.
type Prompter struct {
	In           *bufio.Reader
	Out          io.Writer
	ReadPassword func() ([]byte, error)
}

// NewTerminal returns a Prompter on stdin/stdout that masks the password when
// stdin is a terminal.
func NewTerminal() *Prompter {
	p := &Prompter{In: bufio.NewReader(os.Stdin), Out: os.Stdout}
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		p.ReadPassword = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// Credentials prompts for whichever of username and password is empty.
func (p *Prompter) Credentials(username, password string) (model.Credentials, error) {
	creds := model.Credentials{Username: strings.TrimSpace(username), Password: password}
	if creds.Username != "" && creds.Password != "" {
		return creds, nil
	}

	fmt.Fprintln(p.Out, "\nLogin")
	if creds.Username == "" {
		fmt.Fprint(p.Out, "Username: ")
		line, err := p.readLine()
		if err != nil {
			return model.Credentials{}, fmt.Errorf("read username: %w", err)
		}
		creds.Username = strings.TrimSpace(line)
	}
	if creds.Password == "" {
		fmt.Fprint(p.Out, "Password: ")
		pw, err := p.readPassword()
		if err != nil {
			return model.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		creds.Password = pw
	}
	return creds, nil
}

func (p *Prompter) readPassword() (string, error) {
	if p.ReadPassword == nil {
		return p.readLine()
	}
	b, err := p.ReadPassword()
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.In.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

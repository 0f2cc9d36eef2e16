// Package display renders result tables on the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"

	"ResultsMonitor/internal/calculator"
	"ResultsMonitor/internal/model"
)

const timestampLayout = "02/01/2006 15:04:05"

// Console prints result tables to Out.
type Console struct {
	Out io.Writer
}

// NewConsole creates a Console writing to out.
func NewConsole(out io.Writer) *Console {
	return &Console{Out: out}
}

// ShowBaseline clears the terminal and prints the full result set.
func (c *Console) ShowBaseline(results model.ResultSet) {
	c.clear()
	fmt.Fprintln(c.Out, "\nCurrent Results")
	fmt.Fprintln(c.Out, Table(results))
	fmt.Fprintf(c.Out, "\n%s\n\n", Average(results))
}

// ShowChanges prints the changed modules followed by the new average.
func (c *Console) ShowChanges(changed, current model.ResultSet, at time.Time) {
	fmt.Fprintf(c.Out, "\nUpdated Results (%s)\n", at.Format(timestampLayout))
	fmt.Fprintln(c.Out, Table(changed))
	fmt.Fprintf(c.Out, "\n%s\n\n", Average(current))
}

// Table renders module and final mark columns, sorted by module.
func Table(results model.ResultSet) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Module", "Result"})
	for _, module := range results.Modules() {
		t.AppendRow(table.Row{module, results[module].FinalMark})
	}
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)
	return t.Render()
}

// Average formats the mean of the non-zero final marks, or N/A when there are none.
func Average(results model.ResultSet) string {
	avg, err := calculator.NonZeroAverage(results)
	if err != nil {
		return "Current Average: N/A"
	}
	return "Current Average: " + strconv.FormatFloat(avg, 'f', -1, 64)
}

func (c *Console) clear() {
	f, ok := c.Out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return
	}
	fmt.Fprint(c.Out, "\033[H\033[2J")
}

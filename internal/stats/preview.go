package stats

import (
	"fmt"
	"io"

	"github.com/verte-zerg/choirsched/internal/tabular"
)

// WritePreview renders the first n rows of t as a text table.
func WritePreview(w io.Writer, t tabular.Table, n int) error {
	head := t.Head(n)
	if len(head.Rows) == 0 {
		_, err := fmt.Fprintln(w, "(no rows)")
		return err
	}
	rightAlign := map[int]bool{}
	for i, h := range t.Header {
		if h == AssignedHeader || h == WantedHeader {
			rightAlign[i] = true
		}
	}
	for _, line := range FormatTable(head.Header, head.Rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

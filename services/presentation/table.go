package presentation

import (
	"fmt"
	"github.com/olekukonko/tablewriter"
	"io"
	"strconv"
)

// WriteTable renders the view as a text table; a failed view prints only its error
func WriteTable(w io.Writer, view *TallyView) error {
	if _, err := fmt.Fprintf(w, "Voting Results (cycle %d)\n", view.Cycle); err != nil {
		return err
	}

	if view.HasError() {
		_, err := fmt.Fprintf(w, "error: %s\n", view.Error)
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Id", "Name", "Current Votes"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range view.Candidates {
		table.Append([]string{strconv.FormatUint(c.Id, 10), c.Name, strconv.FormatUint(c.VoteCount, 10)})
	}
	table.Render()
	return nil
}

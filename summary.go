package cpcgfx

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// WriteSummary writes a table of every result followed by the totals.
func (c *Converter) WriteSummary(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "SOURCE\tLABEL\tOUTPUT\tSIZE(PX)\tBYTES\tCOLORS\tFALLBACK\tSTATUS")
	for _, r := range c.results {
		if r.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t-\t-\t-\t-\tERROR: %v\n", r.Source, r.Label, r.Output, r.Err)
			continue
		}
		fallback := "no"
		if r.Fallback {
			fallback = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dx%d\t%s\t%d\t%s\tOK\n", r.Source, r.Label, r.Output, r.Width, r.Height, humanize.Bytes(uint64(r.Bytes)), r.Colors, fallback)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%s converted, %s failed\n", humanize.Comma(int64(len(c.results)-c.failed)), humanize.Comma(int64(c.failed)))
	return err
}

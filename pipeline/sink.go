package pipeline

import (
	"bufio"
	"fmt"
	"io"
)

// WriteRecords writes one "key\tcount" line per record.
func WriteRecords(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)

	for _, r := range records {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", r.Key, r.Count); err != nil {
			return err
		}
	}

	return bw.Flush()
}

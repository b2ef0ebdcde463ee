package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/DrSkyle/proofscope/pkg/graph"
)

// NodesCSV writes one row per node in reading order.
func NodesCSV(ix *graph.Index, sel Selection) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"OrderIndex", "ID", "Type", "Label", "Line", "Column", "Prerequisites", "Dependents"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, n := range ix.Nodes {
		if sel != nil && !sel.NodeVisible(n.ID) {
			continue
		}
		line, col := "", ""
		if n.Position != nil {
			line = strconv.Itoa(n.Position.LineStart)
			col = strconv.Itoa(n.Position.ColStart)
		}
		record := []string{
			strconv.Itoa(n.OrderIndex),
			n.ID,
			n.TypeKey(),
			n.Label,
			line,
			col,
			strconv.Itoa(len(ix.Incoming[n.ID])),
			strconv.Itoa(len(ix.Outgoing[n.ID])),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

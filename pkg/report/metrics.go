package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"route_planner/pkg/routing"
)

var metricsHeader = []string{"label", "distance", "nodes_expanded", "millis", "path_len"}

// Row is one line of a metrics table.
type Row struct {
	Label         string
	Distance      float64
	NodesExpanded int
	Millis        float64
	PathLen       int
}

// RowFromStats converts a single search result.
func RowFromStats(label string, st routing.Stats) Row {
	return Row{
		Label:         label,
		Distance:      st.Distance,
		NodesExpanded: st.NodesExpanded,
		Millis:        st.Millis(),
		PathLen:       len(st.Path),
	}
}

// WriteMetricsCSV writes rows with the header
// label,distance,nodes_expanded,millis,path_len.
func WriteMetricsCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(metricsHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.Label,
			formatDistance(r.Distance),
			strconv.Itoa(r.NodesExpanded),
			strconv.FormatFloat(r.Millis, 'f', 3, 64),
			strconv.Itoa(r.PathLen),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMetricsFile writes the metrics table to path.
func WriteMetricsFile(path string, rows []Row) error {
	var buf bytes.Buffer
	if err := WriteMetricsCSV(&buf, rows); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func formatDistance(d float64) string {
	if math.IsInf(d, 1) {
		return "inf"
	}
	return strconv.FormatFloat(d, 'g', -1, 64)
}

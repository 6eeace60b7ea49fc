package graph_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/osm"

	"route_planner/pkg/graph"
	osmparser "route_planner/pkg/osm"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Weight: 100.5},
			{FromNodeID: 20, ToNodeID: 10, Weight: 100.5},
			{FromNodeID: 20, ToNodeID: 30, Weight: 200},
			{FromNodeID: 30, ToNodeID: 20, Weight: 200},
			{FromNodeID: 10, ToNodeID: 40, Weight: 300.25},
			{FromNodeID: 40, ToNodeID: 10, Weight: 300.25},
		},
		NodeLat:  map[osm.NodeID]float64{10: 1.0, 20: 1.1, 30: 1.2, 40: 1.3},
		NodeLon:  map[osm.NodeID]float64{10: 103.0, 20: 103.1, 30: 103.2, 40: 103.3},
		NodeName: map[osm.NodeID]string{10: "Raffles Place", 30: "Tanjong Pagar"},
	}
	g, err := graph.FromOSM(result)
	if err != nil {
		t.Fatalf("FromOSM: %v", err)
	}
	return g
}

func TestBinaryRoundTrip(t *testing.T) {
	original := buildTestGraph(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "test.graph.bin")

	if err := graph.WriteBinary(path, original); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	loaded, err := graph.ReadBinary(path)
	if err != nil {
		t.Fatalf("ReadBinary: %v", err)
	}

	if loaded.NumNodes() != original.NumNodes() {
		t.Fatalf("NumNodes: got %d, want %d", loaded.NumNodes(), original.NumNodes())
	}
	for i := 0; i < original.NumNodes(); i++ {
		if loaded.NodeLat[i] != original.NodeLat[i] || loaded.NodeLon[i] != original.NodeLon[i] {
			t.Errorf("node %d: got (%f, %f), want (%f, %f)", i,
				loaded.NodeLat[i], loaded.NodeLon[i], original.NodeLat[i], original.NodeLon[i])
		}
		if loaded.Names[i] != original.Names[i] {
			t.Errorf("Names[%d]: got %q, want %q", i, loaded.Names[i], original.Names[i])
		}
	}

	if len(loaded.FirstOut) != len(original.FirstOut) {
		t.Fatalf("FirstOut length: got %d, want %d", len(loaded.FirstOut), len(original.FirstOut))
	}
	for i := range original.FirstOut {
		if loaded.FirstOut[i] != original.FirstOut[i] {
			t.Errorf("FirstOut[%d]: got %d, want %d", i, loaded.FirstOut[i], original.FirstOut[i])
		}
	}

	if len(loaded.Edges) != len(original.Edges) {
		t.Fatalf("Edges length: got %d, want %d", len(loaded.Edges), len(original.Edges))
	}
	for i := range original.Edges {
		if loaded.Edges[i] != original.Edges[i] {
			t.Errorf("Edges[%d]: got %+v, want %+v", i, loaded.Edges[i], original.Edges[i])
		}
	}

	// Reverse adjacency is rebuilt on load.
	if len(loaded.BwdFirstOut) != len(original.BwdFirstOut) || len(loaded.BwdEdges) != len(original.BwdEdges) {
		t.Fatalf("reverse CSR sizes: got (%d, %d), want (%d, %d)",
			len(loaded.BwdFirstOut), len(loaded.BwdEdges), len(original.BwdFirstOut), len(original.BwdEdges))
	}
	for i := range original.BwdEdges {
		if loaded.BwdEdges[i] != original.BwdEdges[i] {
			t.Errorf("BwdEdges[%d]: got %+v, want %+v", i, loaded.BwdEdges[i], original.BwdEdges[i])
		}
	}
}

func TestBinaryEmptyGraph(t *testing.T) {
	g, err := graph.NewBuilder().Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var buf bytes.Buffer
	if err := graph.Encode(&buf, g); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	loaded, err := graph.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if loaded.NumNodes() != 0 || loaded.NumEdges() != 0 {
		t.Errorf("got %d nodes, %d edges, want empty", loaded.NumNodes(), loaded.NumEdges())
	}
}

func TestBinaryChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	if err := graph.Encode(&buf, buildTestGraph(t)); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	data := buf.Bytes()
	// Flip a bit in the first latitude, just past the 24-byte header.
	data[24] ^= 0x01

	_, err := graph.Decode(bytes.NewReader(data))
	if !errors.Is(err, graph.ErrCorrupt) {
		t.Fatalf("Decode err = %v, want ErrCorrupt", err)
	}
}

func TestBinaryInvalidMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.graph.bin")
	os.WriteFile(path, []byte("NOT_RTPLAN_HEADER_BLAH_BLAH_BLAH_MORE_DATA"), 0644)

	_, err := graph.ReadBinary(path)
	if !errors.Is(err, graph.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for invalid magic bytes, got %v", err)
	}
}

func TestBinaryTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.graph.bin")
	os.WriteFile(path, []byte("RTPLAN01"), 0644)

	_, err := graph.ReadBinary(path)
	if err == nil {
		t.Fatal("expected error for truncated file")
	}
}

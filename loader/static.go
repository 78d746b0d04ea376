package loader

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fkzrh/signal-collect/graph"
)

// StaticLoader reads a plain edge-list file, one edge per line as
// "srcID<TAB>dstID", skipping lines starting with "#" — the same
// layout and parsing createAdjList used for its web-Google.txt
// fixture. Each worker runs the same StaticLoader
// against the same file and independently computes which vertices it
// owns via OwnerOf, rather than one process partitioning the file and
// shipping slices to workers over the wire.
type StaticLoader[Id comparable, State any, Sig any] struct {
	Path string

	// ParseID turns one column of a line into an Id.
	ParseID func(token string) (Id, error)

	// OwnerOf reports which worker owns id. It must be set; there is no
	// fallback. util.DefaultMapper (a hash of the id modulo numWorkers)
	// is the module's default vertex_to_worker_mapper.
	OwnerOf func(id Id, numWorkers uint32) uint32

	// NewVertex builds a fresh vertex for an id this worker owns, with
	// no outgoing edges yet — StaticLoader adds those via sink.AddEdge
	// once the vertex exists.
	NewVertex func(id Id) graph.Vertex[Id, State, Sig]
}

func (l *StaticLoader[Id, State, Sig]) Load(sink Sink[Id, State, Sig], workerID, numWorkers uint32) error {
	file, err := os.Open(l.Path)
	if err != nil {
		return fmt.Errorf("loader: open %s: %w", l.Path, err)
	}
	defer file.Close()

	owned := make(map[Id]bool)
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) != 2 {
			return fmt.Errorf("loader: %s:%d: expected 2 tab-separated columns, got %d", l.Path, lineNum, len(cols))
		}
		src, err := l.ParseID(cols[0])
		if err != nil {
			return fmt.Errorf("loader: %s:%d: parsing source id: %w", l.Path, lineNum, err)
		}
		dst, err := l.ParseID(cols[1])
		if err != nil {
			return fmt.Errorf("loader: %s:%d: parsing target id: %w", l.Path, lineNum, err)
		}

		if l.OwnerOf(src, numWorkers) == workerID {
			if !owned[src] {
				owned[src] = true
				sink.AddVertex(l.NewVertex(src))
			}
			sink.AddEdge(graph.Edge[Id]{SourceID: src, TargetID: dst})
		}
		if l.OwnerOf(dst, numWorkers) == workerID && !owned[dst] {
			owned[dst] = true
			sink.AddVertex(l.NewVertex(dst))
		}
	}
	return scanner.Err()
}

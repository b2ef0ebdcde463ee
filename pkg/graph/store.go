package graph

// GraphStore defines graph storage interface.
type GraphStore interface {
	IndexReader

	// Mutations. None of these recompute derived state.
	UpsertNode(raw RawNode) bool
	AddEdge(raw RawEdge) AddResult
	Reset()

	// ApplyMutations rebuilds ordering, adjacency and partitions and
	// publishes the result. Call it after every batch.
	ApplyMutations() *Index

	Stats() Stats
}

// IndexReader exposes the last published index.
type IndexReader interface {
	Index() *Index
}

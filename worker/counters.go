package worker

// Counters holds the monotonic tallies the worker reports on demand.
// The invariant "store.size == verticesAdded - verticesRemoved" is
// checked directly against these fields in tests.
type Counters struct {
	VerticesAdded           uint64
	VerticesRemoved         uint64
	EdgesAdded              uint64
	OutgoingEdgesRemoved    uint64
	SignalOperationsRun     uint64
	CollectOperationsRun    uint64
	SignalSteps             uint64
	CollectSteps            uint64
	MessagesSent            uint64
	MessagesReceived        uint64
}

// Statistics is the snapshot sent to the coordinator on request.
type Statistics struct {
	WorkerID            uint32
	VertexCount         int
	OutgoingEdgeCount   int
	MessagesSent        uint64
	MessagesReceived    uint64
	SignalOperationsRun uint64
	CollectOperationsRun uint64
}

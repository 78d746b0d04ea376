package util

import (
	"encoding/binary"
	"hash/fnv"
)

func HashId(vertexId uint64) uint64 {
	inputBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(inputBytes, vertexId)

	algorithm := fnv.New64a()
	algorithm.Write(inputBytes)
	return algorithm.Sum64()
}

// DefaultMapper is the default vertex_to_worker_mapper: a vertex's
// owning worker is its hash modulo the worker count. Deployments with
// a different partitioning scheme supply their own mapper instead of
// this one wherever a mapper func is expected (bus.RPCBus,
// loader.StaticLoader's OwnerOf, ...).
func DefaultMapper(id uint64, numWorkers uint32) uint32 {
	return uint32(HashId(id) % uint64(numWorkers))
}

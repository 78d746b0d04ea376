package util

import (
	"fmt"
	"os"
	"strings"
)

// CoordConfig is read by cmd/coord: where workers join, where the
// status API the coordinator exposes listens.
type CoordConfig struct {
	WorkerAPIListenAddr string
	ClientAPIListenAddr string
}

// WorkerConfig is read by cmd/worker. CoordAddr is filled in by
// SynchronizeConfigs from the coordinator's own config rather than
// hand-maintained per worker, so the two never drift apart.
type WorkerConfig struct {
	WorkerID         uint32
	CoordAddr        string
	WorkerListenAddr string
	SignalListenAddr string
	StatsListenAddr  string
	GraphPath        string
	NumberOfWorkers  uint32
}

const (
	WorkerConfigPrefix = "worker"
	ConfigDir          = "config"
)

// SynchronizeConfigs stamps every worker config file in ConfigDir with
// the coordinator's current WorkerAPIListenAddr, so a coordinator
// address change doesn't require editing each worker config by hand.
func SynchronizeConfigs() error {
	files, err := os.ReadDir(ConfigDir)
	if err != nil {
		return err
	}

	var coord CoordConfig
	if err := ReadJSONConfig(GetConfigPath("coord_config.json"), &coord); err != nil {
		return err
	}

	for _, file := range files {
		filename := file.Name()
		if !IsWorkerConfig(filename) {
			continue
		}
		var worker WorkerConfig
		if err := ReadJSONConfig(GetConfigPath(filename), &worker); err != nil {
			return err
		}
		worker.CoordAddr = coord.WorkerAPIListenAddr
		if err := WriteJSONConfig(GetConfigPath(filename), worker); err != nil {
			return err
		}
	}
	return nil
}

func IsWorkerConfig(filename string) bool {
	return strings.HasPrefix(filename, WorkerConfigPrefix)
}

func GetConfigPath(filename string) string {
	return fmt.Sprintf("%s/%s", ConfigDir, filename)
}

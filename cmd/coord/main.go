// cmd/coord runs the coordinator: the process workers join and report
// status/statistics to. Grounded in bagel/coord.go's main entry point,
// scoped to the registration/reporting surface package coord actually
// implements (no checkpointing, no client query gateway — see
// DESIGN.md).
package main

import (
	"flag"
	"log"

	"github.com/fkzrh/signal-collect/coord"
	"github.com/fkzrh/signal-collect/util"
)

func main() {
	configPath := flag.String("config", "config/coord_config.json", "path to the coordinator's JSON config file")
	flag.Parse()

	var cfg util.CoordConfig
	util.CheckErr(util.ReadJSONConfig(*configPath, &cfg), "coord: reading config %s\n", *configPath)

	c := coord.New()
	log.Printf("coord: listening for workers on %s\n", cfg.WorkerAPIListenAddr)
	util.CheckErr(c.ListenAndServe(cfg.WorkerAPIListenAddr), "coord: listen on %s\n", cfg.WorkerAPIListenAddr)
}

// cmd/config stamps every worker config file with the coordinator's
// current address (util.SynchronizeConfigs), so changing where the
// coordinator listens doesn't require hand-editing each worker's
// config file. A sibling "port" subcommand calling
// util.AssignWorkerIPPorts was dropped — that helper was itself an
// unimplemented stub with nothing behind it (see DESIGN.md).
package main

import (
	"fmt"
	"os"

	"github.com/fkzrh/signal-collect/util"
)

func main() {
	if len(os.Args) != 2 || os.Args[1] != "sync" {
		fmt.Println("usage: ./bin/config sync")
		return
	}

	if err := util.SynchronizeConfigs(); err != nil {
		fmt.Println("failed to synchronize config files:", err)
		os.Exit(1)
	}
}

// Package statusapi exposes a worker's statistics over HTTP using the
// same gin-based style as the coordinator's external API
// (listenExternalRequests/AddWorker/DeleteWorker), but scoped to the
// one read-only endpoint a worker itself needs: GET /stats. The
// administrative worker-add/remove surface those handlers served stays
// the coordinator's concern and isn't reproduced here.
package statusapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatisticsFunc produces the current snapshot on demand; Router
// doesn't hold a *worker.Worker directly so it stays usable from a
// goroutine other than the worker's own (the handler calls through to
// whatever synchronization the caller's StatisticsFunc performs, e.g.
// submitting an OpGetStatistics ControlOp and waiting on its channel).
type StatisticsFunc func() (interface{}, error)

// Router wraps a gin.Engine serving a worker's /stats endpoint.
type Router struct {
	engine *gin.Engine
	stats  StatisticsFunc
}

func New(stats StatisticsFunc) *Router {
	r := &Router{engine: gin.Default(), stats: stats}
	r.engine.GET("/stats", r.handleStats)
	return r
}

func (r *Router) handleStats(c *gin.Context) {
	snapshot, err := r.stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Run blocks serving on addr, exactly like gin.Engine.Run.
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}

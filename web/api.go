package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slipway-io/slipway/lifecycle"
)

// componentView is the wire shape of one registered component.
type componentView struct {
	Name      string `json:"name"`
	Phase     int    `json:"phase"`
	Running   bool   `json:"running"`
	AutoStart bool   `json:"autoStart"`
	AsyncStop bool   `json:"asyncStop"`
}

// LifecycleRoutes mounts the orchestrator inspection API:
//
//	GET /lifecycle            reports the processor running flag
//	GET /lifecycle/components lists registered components and their state
func LifecycleRoutes(proc *lifecycle.Processor, reg lifecycle.Registry) func(Router) {
	return func(r Router) {
		group := r.Group("/lifecycle")

		group.GET("", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"running": proc.IsRunning()})
		})

		group.GET("/components", func(c *gin.Context) {
			entries := reg.Components()
			views := make([]componentView, 0, len(entries))
			for _, e := range entries {
				views = append(views, componentView{
					Name:      e.Name,
					Phase:     e.Phase,
					Running:   e.Component.IsRunning(),
					AutoStart: e.AutoStart,
					AsyncStop: e.Async != nil,
				})
			}
			c.JSON(http.StatusOK, gin.H{"components": views})
		})
	}
}

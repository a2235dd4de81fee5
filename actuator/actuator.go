// Package actuator mounts the management endpoints: health, info, and
// Prometheus metrics.
package actuator

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slipway-io/slipway/config"
	"github.com/slipway-io/slipway/lifecycle"
	"github.com/slipway-io/slipway/web"
)

// Routes returns a route-mounting hook for the web server. Health reflects
// the lifecycle processor's running flag plus per-component state; /metrics
// is mounted only when metrics are enabled in config.
func Routes(cfg config.Root, proc *lifecycle.Processor, reg lifecycle.Registry) func(web.Router) {
	return func(r web.Router) {
		group := r.Group(cfg.Actuator.BasePath)

		group.GET("/health", func(c *gin.Context) {
			status := "UP"
			code := http.StatusOK
			if !proc.IsRunning() {
				status = "DOWN"
				code = http.StatusServiceUnavailable
			}

			checks := []gin.H{}
			for _, e := range reg.Components() {
				checks = append(checks, gin.H{
					"component": e.Name,
					"running":   e.Component.IsRunning(),
				})
			}

			c.JSON(code, gin.H{
				"status": status,
				"checks": checks,
			})
		})

		group.GET("/info", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"app": gin.H{
					"name":    cfg.App.Name,
					"version": cfg.App.Version,
				},
				"runtime": gin.H{
					"go":           runtime.Version(),
					"numGoroutine": runtime.NumGoroutine(),
					"time":         time.Now().UTC().Format(time.RFC3339),
					"pid":          os.Getpid(),
				},
			})
		})

		if cfg.Observability.Metrics.Enabled {
			group.GET("/metrics", gin.WrapH(promhttp.Handler()))
		}
	}
}

package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Health reports store reachability and host load. ping may be nil.
func Health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		info := gin.H{"status": "ok"}
		status := http.StatusOK
		if ping != nil {
			if err := ping(ctx); err != nil {
				info["status"] = "degraded"
				info["store_error"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}

		if usage, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(usage) > 0 {
			info["cpu_usage"] = usage[0]
		}
		if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
			info["memory_total"] = memInfo.Total
			info["memory_used"] = memInfo.Used
			info["memory_used_percent"] = memInfo.UsedPercent
		}
		c.JSON(status, info)
	}
}

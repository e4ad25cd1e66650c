package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/critical/catalog-service/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// 按method/路由模板/状态码计数,并记录耗时分布
// 使用FullPath()而非原始URL,避免路径参数导致标签爆炸
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched" // 404等未命中路由的请求
		}

		metrics.ObserveHTTP(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}

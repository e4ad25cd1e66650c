package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// 指标未初始化时中间件必须静默跳过,不能panic
// (指标初始化在main中进行,测试进程内不会执行)
func TestMetrics_BeforeInit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(Metrics())
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	t.Run("命中路由", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)

		assert.NotPanics(t, func() { r.ServeHTTP(w, req) })
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("未命中路由", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)

		assert.NotPanics(t, func() { r.ServeHTTP(w, req) })
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

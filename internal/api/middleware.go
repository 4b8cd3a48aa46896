package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/annel0/roguelite-platformer/internal/catalog"
)

// corsMiddleware разрешает запросы из клиента игры
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// upgradeTypeMiddleware отклоняет неизвестный тип улучшения до обработчика
func (rs *RestServer) upgradeTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := catalog.UpgradeType(c.Param("type"))
		if _, ok := rs.catalog.Cost(t); !ok {
			c.JSON(http.StatusBadRequest, GenericResponse{
				Success: false,
				Message: "Неизвестное улучшение: " + string(t),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

package httpserver

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// buildRouter wires routes for the cart session API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, engine cartEngine, allowedOrigins string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	// Line ids are storefront gids with embedded slashes; match on the
	// raw path and let the handlers unescape the segment themselves.
	router.UseRawPath = true
	router.UnescapePathValues = false
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(corsConfig(allowedOrigins)))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &cartHandlers{engine: engine}
	router.GET("/cart", h.getCart)
	router.POST("/cart/items", h.addItem)
	router.PATCH("/cart/items/:lineID", h.updateItem)
	router.DELETE("/cart/items/:lineID", h.removeItem)
	router.DELETE("/cart", h.clearCart)
	router.POST("/cart/refresh", h.refreshCart)

	return router
}

func corsConfig(allowedOrigins string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	if allowedOrigins == "" || allowedOrigins == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = strings.Split(allowedOrigins, ",")
	return cfg
}

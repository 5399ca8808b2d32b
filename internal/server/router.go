package server

import (
	"time"

	"github.com/dermatocheck/dermatocheck-api/internal/config"
	"github.com/dermatocheck/dermatocheck-api/internal/i18n"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes. Reviews listing, the translation
// catalogs, the dermatologist search, and health stay public; everything
// else needs a bearer token.
func NewRouter(cfg *config.Config, handlers *Handlers, translator *i18n.Translator, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	origins := cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(LanguageMiddleware())

	router.GET("/health", handlers.Health)

	v1 := router.Group("/v1")
	{
		v1.GET("/i18n/:lang", handlers.Catalog)
		v1.GET("/reviews", handlers.ListReviews)
		v1.POST("/dermatologists/search", handlers.SearchDermatologists)

		auth := v1.Group("")
		auth.Use(AuthMiddleware(cfg.Auth.JWTSecret, translator, logger))
		{
			auth.POST("/analyses", handlers.CreateAnalysis)
			auth.GET("/analyses", handlers.ListAnalyses)
			auth.GET("/analyses/:id/pdf", handlers.AnalysisPDF)
			auth.GET("/analyses/:id/mailto", handlers.AnalysisMailto)

			auth.POST("/reviews", handlers.SubmitReview)

			auth.GET("/profile", handlers.GetProfile)
			auth.PUT("/profile", handlers.UpdateProfile)
		}
	}

	return router
}

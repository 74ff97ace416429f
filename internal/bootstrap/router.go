package bootstrap

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/productstack/products-backend/internal/api/http"
	"github.com/productstack/products-backend/internal/api/http/middleware"
	"github.com/productstack/products-backend/internal/auth"
	prodhttp "github.com/productstack/products-backend/internal/products/http"
	"github.com/productstack/products-backend/internal/products/repository"
	"github.com/productstack/products-backend/internal/products/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Store          *redis.Client
	RateLimitRPS   float64
	RateLimitBurst int
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "userId", "X-Request-Id")
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Store)
	healthHandler.RegisterRoutes(r)

	productRepo := repository.NewProductRepository(dep.Store)
	productSvc := service.NewProductService(productRepo)

	products := r.Group("/products")
	products.Use(middleware.RequestIDMiddleware())
	if dep.RateLimitRPS > 0 {
		products.Use(middleware.RateLimitMiddleware(dep.RateLimitRPS, dep.RateLimitBurst))
	}
	products.Use(auth.RequireUser())

	prodhttp.New(productSvc).Register(products)

	return r
}

package main

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/tienda/docs"
	"github.com/MikeMC777/tienda/internal/health"
	"github.com/MikeMC777/tienda/internal/httpx"
	"github.com/MikeMC777/tienda/internal/metrics"
	"github.com/MikeMC777/tienda/internal/order"
	"github.com/MikeMC777/tienda/internal/product"
	"github.com/MikeMC777/tienda/internal/user"
)

type routes struct {
	users          *user.Service
	products       *product.Service
	orders         *order.Service
	health         *health.Handler
	log            *slog.Logger
	requestTimeout time.Duration
}

func newRouter(rt routes) *gin.Engine {
	r := gin.New()
	r.Use(
		httpx.RequestID(rt.log),
		httpx.Recovery(),
		httpx.Logger(),
		httpx.CORS(httpx.DefaultCORSOptions()),
		metrics.Middleware(),
		httpx.Timeout(rt.requestTimeout),
	)

	r.GET("/", rt.health.Banner)
	r.GET("/health", rt.health.Liveness)
	r.GET("/status", rt.health.Status)
	r.GET("/metrics", metrics.Handler())
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/register", registerHandler(rt.users))
	r.POST("/login", loginHandler(rt.users))

	r.GET("/products", listProductsHandler(rt.products))
	r.GET("/products/:id", getProductHandler(rt.products))

	auth := r.Group("/", httpx.RequireAccount(rt.users))
	auth.GET("/users/me", meHandler)
	auth.POST("/products", createProductHandler(rt.products))
	auth.POST("/orders", placeOrderHandler(rt.orders))
	auth.GET("/orders", listOrdersHandler(rt.orders))
	auth.GET("/orders/:id", getOrderHandler(rt.orders))

	return r
}

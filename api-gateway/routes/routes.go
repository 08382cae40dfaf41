package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/schoolkit/edupay/api-gateway/config"
	"github.com/schoolkit/edupay/api-gateway/health"
	"github.com/schoolkit/edupay/api-gateway/middleware"
	"github.com/schoolkit/edupay/api-gateway/proxy"
)

// RouteDefinition maps a path prefix to a backend service
type RouteDefinition struct {
	Prefix       string
	Service      string
	RequireAuth  bool
	RequireAdmin bool
}

// Routes lists every path prefix the gateway forwards
var Routes = []RouteDefinition{
	{Prefix: "/auth", Service: "account"},
	{Prefix: "/users", Service: "account", RequireAuth: true},
	{Prefix: "/api/accounts", Service: "account", RequireAuth: true},
	{Prefix: "/api/admin", Service: "account", RequireAuth: true},
	{Prefix: "/admin", Service: "account", RequireAuth: true, RequireAdmin: true},
	{Prefix: "/api/payments", Service: "payment", RequireAuth: true},
}

// SetupRoutes registers all gateway routes on the fiber app
func SetupRoutes(app *fiber.App, cfg *config.GatewayConfig, rdb *redis.Client) {
	reverseProxy := proxy.NewReverseProxy(cfg)
	healthChecker := health.NewHealthChecker(cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.QuickCheck())
	})

	app.Get("/health/live", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "alive"})
	})

	app.Get("/health/ready", func(c *fiber.Ctx) error {
		result := healthChecker.CheckAllServices(c.UserContext())
		status := fiber.StatusOK
		if result.Status == "unhealthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	})

	app.Get("/health/services", func(c *fiber.Ctx) error {
		return c.JSON(healthChecker.CheckAllServices(c.UserContext()))
	})

	app.Get("/gateway/stats", func(c *fiber.Ctx) error {
		stats := make(map[string]interface{})
		for name, lb := range reverseProxy.LoadBalancers() {
			stats[name] = lb.Stats()
		}
		return c.JSON(fiber.Map{
			"load_balancers": stats,
			"timestamp":      time.Now(),
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":    "EduPay API Gateway",
			"version": "1.0.0",
			"services": fiber.Map{
				"account": "/auth, /users, /api/accounts, /api/admin, /admin",
				"payment": "/api/payments",
			},
			"health": "/health",
		})
	})

	var paymentLimiter fiber.Handler
	if rdb != nil {
		paymentLimiter = middleware.PaymentRateLimiter(rdb)
	}

	for _, route := range Routes {
		registerServiceRoute(app, route, reverseProxy, paymentLimiter)
	}
}

func registerServiceRoute(app *fiber.App, route RouteDefinition, reverseProxy *proxy.ReverseProxy, paymentLimiter fiber.Handler) {
	handlers := make([]fiber.Handler, 0, 4)

	if route.RequireAuth {
		handlers = append(handlers, middleware.AuthMiddleware())
	}
	if route.RequireAdmin {
		handlers = append(handlers, middleware.AdminMiddleware())
	}
	if route.Service == "payment" && paymentLimiter != nil {
		handlers = append(handlers, paymentLimiter)
	}

	handlers = append(handlers, func(c *fiber.Ctx) error {
		return reverseProxy.ProxyRequest(c, route.Service)
	})

	group := app.Group(route.Prefix, handlers[:len(handlers)-1]...)
	group.All("/*", handlers[len(handlers)-1])
	group.All("/", handlers[len(handlers)-1])
}

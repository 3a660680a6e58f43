package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/comandapos/comanda-app/config"
	"github.com/comandapos/comanda-app/controllers"
	"github.com/comandapos/comanda-app/events"
	"github.com/comandapos/comanda-app/middlewares"
	"github.com/comandapos/comanda-app/models"
	"github.com/comandapos/comanda-app/services"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, hub *events.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.Metrics())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	orderSvc := services.NewOrderService(db, hub)
	paymentSvc := services.NewPaymentService(db, hub)
	tableSvc := services.NewTableService(db, hub)
	catalogSvc := services.NewCatalogService(db)

	orderCtrl := controllers.NewOrderController(orderSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc)
	tableCtrl := controllers.NewTableController(tableSvc)
	categoryCtrl := controllers.NewCategoryController(catalogSvc)
	productCtrl := controllers.NewProductController(catalogSvc)
	customerCtrl := controllers.NewCustomerController(db)
	userCtrl := controllers.NewUserController(db)
	tenantCtrl := controllers.NewTenantController(db)
	eventsCtrl := controllers.NewEventsController(hub, cfg.CORSOrigins)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public, tenant-resolved, rate limited: login needs the tenant
	// before there is any token, signup needs neither.
	public := r.Group("/api/v1")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/tenants", tenantCtrl.ProvisionTenant)
		public.POST("/login", middlewares.TenantResolver(), userCtrl.Login)
	}

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware())
	api.Use(middlewares.TenantResolver())
	{
		api.GET("/profile", userCtrl.GetProfile)
		api.GET("/users", middlewares.RequireRoles(models.RoleManager), userCtrl.GetAllUsers)
		api.POST("/users", middlewares.RequireRoles(), userCtrl.Register)

		api.GET("/tenants/current", tenantCtrl.GetCurrentTenant)
		api.PATCH("/tenants/current", middlewares.RequireRoles(), tenantCtrl.UpdateCurrentTenant)

		api.GET("/categories", categoryCtrl.GetAllCategories)
		api.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
		api.POST("/categories", middlewares.RequireRoles(models.RoleManager), categoryCtrl.CreateCategory)
		api.PATCH("/categories/:cat_id", middlewares.RequireRoles(models.RoleManager), categoryCtrl.UpdateCategory)
		api.DELETE("/categories/:cat_id", middlewares.RequireRoles(models.RoleManager), categoryCtrl.DeleteCategory)

		api.GET("/products", productCtrl.GetAllProducts)
		api.GET("/products/:product_id", productCtrl.GetProductByID)
		api.POST("/products", middlewares.RequireRoles(models.RoleManager), productCtrl.CreateProduct)
		api.PATCH("/products/:product_id", middlewares.RequireRoles(models.RoleManager), productCtrl.UpdateProduct)
		api.DELETE("/products/:product_id", middlewares.RequireRoles(models.RoleManager), productCtrl.DeleteProduct)
		api.POST("/products/:product_id/toggle-availability", productCtrl.ToggleAvailability)

		api.GET("/tables", tableCtrl.GetAllTables)
		api.GET("/tables/:table_id", tableCtrl.GetTableByID)
		api.POST("/tables", middlewares.RequireRoles(models.RoleManager), tableCtrl.CreateTable)
		api.PATCH("/tables/:table_id", middlewares.RequireRoles(models.RoleManager), tableCtrl.UpdateTable)
		api.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
		api.DELETE("/tables/:table_id", middlewares.RequireRoles(models.RoleManager), tableCtrl.DeleteTable)

		api.GET("/customers", customerCtrl.GetAllCustomers)
		api.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
		api.POST("/customers", customerCtrl.CreateCustomer)
		api.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
		api.DELETE("/customers/:customer_id", middlewares.RequireRoles(models.RoleManager), customerCtrl.DeleteCustomer)

		api.GET("/orders", orderCtrl.GetAllOrders)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.POST("/orders", orderCtrl.CreateOrder)
		api.POST("/orders/:order_id/items", orderCtrl.AddItem)
		api.PATCH("/orders/:order_id/items/:item_id", orderCtrl.UpdateItemQuantity)
		api.DELETE("/orders/:order_id/items/:item_id", orderCtrl.RemoveItem)
		api.POST("/orders/:order_id/discount", middlewares.RequireRoles(models.RoleManager, models.RoleCashier), orderCtrl.ApplyDiscount)
		api.POST("/orders/:order_id/close", orderCtrl.CloseOrder)
		api.POST("/orders/:order_id/cancel", middlewares.RequireRoles(models.RoleManager), orderCtrl.CancelOrder)
		api.GET("/orders/:order_id/payment-summary", paymentCtrl.GetOrderPaymentSummary)

		api.GET("/payments", paymentCtrl.GetPayments)
		api.GET("/payments/:payment_id", paymentCtrl.GetPaymentByID)
		api.POST("/payments", middlewares.RequireRoles(models.RoleManager, models.RoleCashier), paymentCtrl.CreatePayment)
	}

	// Platform-level tenant administration, token only: these operate
	// across tenants and must not run through the tenant resolver.
	platform := r.Group("/api/v1/platform")
	platform.Use(middlewares.AuthMiddleware())
	platform.Use(middlewares.RequireRoles())
	{
		platform.GET("/tenants", tenantCtrl.GetAllTenants)
		platform.DELETE("/tenants/:id", tenantCtrl.DeactivateTenant)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/events", eventsCtrl.Subscribe)
	}

	return r
}

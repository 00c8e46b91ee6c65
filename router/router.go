package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cuetracker/billiard-app/controllers"
	"github.com/cuetracker/billiard-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// 50 requests/sec per IP across the whole API; registered before
	// any route so gin bakes it into every handler chain
	rateLimiter := middlewares.NewRateLimiter(50, 1)
	r.Use(rateLimiter.RateLimit())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db)
	sessionCtrl := controllers.NewSessionController(db)
	productCtrl := controllers.NewProductController(db)
	categoryCtrl := controllers.NewProductCategoryController(db)
	customerCtrl := controllers.NewCustomerController(db)
	membershipCtrl := controllers.NewMembershipController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	billCtrl := controllers.NewBillController(db)
	reportCtrl := controllers.NewReportController(db)
	maintenanceCtrl := controllers.NewMaintenanceLogController(db)
	notificationCtrl := controllers.NewNotificationController(db)
	adminCtrl := controllers.NewAdminController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// login is rate limited to slow down credential stuffing
	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/login", userCtrl.Login)
	}

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := r.Group("/")
	staff.Use(middlewares.AuthMiddleware(), middlewares.RequireStaff())
	{
		staff.GET("/profile", userCtrl.Profile)
		staff.POST("/logout", userCtrl.Logout)

		// floor
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.GET("/tables/:table_id", tableCtrl.GetTableByID)

		// session lifecycle
		staff.POST("/tables/:table_id/start", sessionCtrl.StartSession)
		staff.POST("/tables/:table_id/pause", sessionCtrl.PauseSession)
		staff.POST("/tables/:table_id/resume", sessionCtrl.ResumeSession)
		staff.POST("/tables/:table_id/checkout", sessionCtrl.Checkout)
		staff.POST("/tables/:table_id/items", sessionCtrl.AddSessionItem)
		staff.DELETE("/tables/:table_id/items/:product_id", sessionCtrl.RemoveSessionItem)
		staff.POST("/tables/:table_id/suggest-notes", sessionCtrl.SuggestNotes)

		// counter
		staff.GET("/categories", categoryCtrl.GetAllCategories)
		staff.GET("/products", productCtrl.GetAllProducts)
		staff.GET("/products/:product_id", productCtrl.GetProductByID)

		// customers
		staff.GET("/customers", customerCtrl.GetAllCustomers)
		staff.POST("/customers", customerCtrl.CreateCustomer)
		staff.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
		staff.PATCH("/customers/:customer_id", customerCtrl.UpdateCustomer)
		staff.POST("/customers/:customer_id/membership", customerCtrl.AssignMembership)

		// memberships (read) and payments
		staff.GET("/memberships", membershipCtrl.GetAllMemberships)
		staff.GET("/payments", paymentCtrl.ListPayments)
		staff.POST("/payments", paymentCtrl.RecordPayment)

		// bills
		staff.GET("/bills", billCtrl.GetAllBills)
		staff.GET("/bills/:bill_id", billCtrl.GetBillByID)
		staff.GET("/bills/:bill_id/pdf", billCtrl.GetBillPDF)

		// notifications
		staff.GET("/notifications", notificationCtrl.GetAllNotifications)

		// maintenance
		staff.GET("/maintenance-logs", maintenanceCtrl.GetAllLogs)
		staff.GET("/maintenance-logs/:log_id", maintenanceCtrl.GetLogByID)
		staff.PATCH("/maintenance-logs/:log_id", maintenanceCtrl.UpdateLogReason)
		staff.PATCH("/tables/:table_id/status", tableCtrl.SetTableStatus)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireAdmin())
	{
		admin.POST("/register", userCtrl.Register)
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.PATCH("/users/:user_id", userCtrl.UpdateUser)
		admin.DELETE("/users/:user_id", userCtrl.DeleteUser)

		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PATCH("/tables/:table_id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)

		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PATCH("/categories/:category_id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:category_id", categoryCtrl.DeleteCategory)

		admin.POST("/products", productCtrl.CreateProduct)
		admin.PATCH("/products/:product_id", productCtrl.UpdateProduct)
		admin.POST("/products/:product_id/stock", productCtrl.AdjustStock)
		admin.DELETE("/products/:product_id", productCtrl.DeleteProduct)

		admin.POST("/memberships", membershipCtrl.CreateMembership)
		admin.PATCH("/memberships/:membership_id", membershipCtrl.UpdateMembership)
		admin.DELETE("/memberships/:membership_id", membershipCtrl.DeleteMembership)

		admin.DELETE("/customers/:customer_id", customerCtrl.DeleteCustomer)

		admin.POST("/notifications", notificationCtrl.CreateNotification)
		admin.DELETE("/notifications/:notification_id", notificationCtrl.DeleteNotification)

		admin.GET("/dashboard/stats", adminCtrl.DashboardStats)
		admin.GET("/reports/daily", reportCtrl.DailyReport)
		admin.GET("/reports/weekly", reportCtrl.WeeklyReport)
		admin.GET("/reports/weekly/pdf", reportCtrl.WeeklyReportPDF)
		admin.GET("/reports/top-products", reportCtrl.TopProducts)
		admin.GET("/reports/utilization", reportCtrl.TableUtilization)
	}

	// live floor view over websocket
	wsGroup := r.Group("/ws")
	wsGroup.Use(middlewares.WebSocketAuthMiddleware())
	{
		wsGroup.GET("/floor", controllers.FloorHandler)
	}

	return r
}

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/OficinaProServices/oficina-api/internal/audit"
	"github.com/OficinaProServices/oficina-api/internal/config"
	"github.com/OficinaProServices/oficina-api/internal/handlers"
	infraRepo "github.com/OficinaProServices/oficina-api/internal/infra/repository"
	"github.com/OficinaProServices/oficina-api/internal/middleware"
	"github.com/OficinaProServices/oficina-api/internal/notify"
	ucAppointment "github.com/OficinaProServices/oficina-api/internal/usecase/appointment"
	ucOrder "github.com/OficinaProServices/oficina-api/internal/usecase/order"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	scheduleRepo := infraRepo.NewScheduleGormRepository(db)
	orderRepo := infraRepo.NewOrderGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	mailer := notify.NewMailer(cfg)

	// ======================================================
	// 🧠 USE CASES — AGENDA
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		scheduleRepo,
		auditDispatcher,
		mailer,
	)

	rescheduleAppointmentUC := ucAppointment.NewRescheduleAppointment(
		scheduleRepo,
		auditDispatcher,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		scheduleRepo,
		auditDispatcher,
	)

	completeAppointmentUC := ucAppointment.NewCompleteAppointment(
		scheduleRepo,
		auditDispatcher,
	)

	listAppointmentsByDateUC := ucAppointment.NewListAppointmentsByDate(
		scheduleRepo,
	)

	listAppointmentsByMonthUC := ucAppointment.NewListAppointmentsByMonth(
		scheduleRepo,
	)

	getAvailabilityUC := ucAppointment.NewGetAvailability(
		scheduleRepo,
	)

	// ======================================================
	// 🧠 USE CASES — ORDENS DE SERVIÇO
	// ======================================================
	addItemUC := ucOrder.NewAddItem(orderRepo, auditDispatcher)
	updateItemUC := ucOrder.NewUpdateItem(orderRepo, auditDispatcher)
	removeItemUC := ucOrder.NewRemoveItem(orderRepo, auditDispatcher)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	workshopHandler := handlers.NewWorkshopHandler(db)

	mechanicHandler := handlers.NewMechanicHandler(db)
	clientHandler := handlers.NewClientHandler(db)
	vehicleHandler := handlers.NewVehicleHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	inventoryHandler := handlers.NewInventoryHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		createAppointmentUC,
		rescheduleAppointmentUC,
		cancelAppointmentUC,
		completeAppointmentUC,
		listAppointmentsByDateUC,
		listAppointmentsByMonthUC,
		getAvailabilityUC,
	)

	orderHandler := handlers.NewOrderHandler(
		db,
		addItemUC,
		updateItemUC,
		removeItemUC,
	)

	expenseHandler := handlers.NewExpenseHandler(db)
	summaryHandler := handlers.NewSummaryHandler(db, rdb)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// 📈 OBSERVABILIDADE
	// ======================================================
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/me/workshop", workshopHandler.GetMeWorkshop)
			secured.PATCH("/me/workshop", workshopHandler.UpdateMeWorkshop)

			secured.GET("/me/mechanics", mechanicHandler.List)
			secured.POST("/me/mechanics", middleware.RequireRoles("owner"), mechanicHandler.Create)
			secured.PATCH("/me/mechanics/:id", middleware.RequireRoles("owner"), mechanicHandler.Update)

			secured.GET("/me/clients", clientHandler.List)
			secured.POST("/me/clients", clientHandler.Create)
			secured.PATCH("/me/clients/:id", clientHandler.Update)

			secured.GET("/me/vehicles", vehicleHandler.List)
			secured.POST("/me/vehicles", vehicleHandler.Create)
			secured.PATCH("/me/vehicles/:id", vehicleHandler.Update)
			secured.DELETE("/me/vehicles/:id", vehicleHandler.Delete)

			secured.GET("/me/services", serviceHandler.List)
			secured.POST("/me/services", serviceHandler.Create)
			secured.PATCH("/me/services/:id", serviceHandler.Update)

			secured.GET("/me/products", inventoryHandler.List)
			secured.POST("/me/products", inventoryHandler.Create)
			secured.PATCH("/me/products/:id", inventoryHandler.Update)
			secured.POST("/me/products/:id/stock", inventoryHandler.AdjustStock)

			secured.GET("/me/working-hours", workingHoursHandler.Get)
			secured.PUT("/me/working-hours", workingHoursHandler.Put)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/me/appointments", appointmentHandler.Create)
			secured.GET("/me/appointments", appointmentHandler.List)
			secured.GET("/me/appointments/month", appointmentHandler.ListMonth)
			secured.GET("/me/appointments/availability", appointmentHandler.Availability)
			secured.PATCH("/me/appointments/:id", appointmentHandler.Reschedule)
			secured.PATCH("/me/appointments/:id/cancel", appointmentHandler.Cancel)
			secured.PATCH("/me/appointments/:id/complete", appointmentHandler.Complete)

			// ------------------------------
			// ORDENS DE SERVIÇO
			// ------------------------------
			secured.POST("/me/orders", orderHandler.Create)
			secured.GET("/me/orders", orderHandler.List)
			secured.GET("/me/orders/:id", orderHandler.Get)
			secured.PATCH("/me/orders/:id/close", orderHandler.Close)
			secured.PATCH("/me/orders/:id/cancel", orderHandler.Cancel)

			secured.POST("/me/orders/:id/items", orderHandler.AddItem)
			secured.PATCH("/me/orders/:id/items/:itemId", orderHandler.UpdateItem)
			secured.DELETE("/me/orders/:id/items/:itemId", orderHandler.RemoveItem)

			secured.GET("/me/expenses", expenseHandler.List)
			secured.POST("/me/expenses", expenseHandler.Create)
			secured.PATCH("/me/expenses/:id", expenseHandler.Update)
			secured.DELETE("/me/expenses/:id", expenseHandler.Delete)

			secured.GET("/me/summary", summaryHandler.Get)

			secured.GET("/me/audit-logs", auditLogsHandler.List)
		}
	}
}

package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"guesthouse-backend/controllers"
	"guesthouse-backend/middleware"
	"guesthouse-backend/services"
)

// Handlers groups the controller instances the router mounts.
type Handlers struct {
	Auth          *controllers.AuthController
	Users         *controllers.UserController
	Rooms         *controllers.RoomController
	Guests        *controllers.GuestController
	Payments      *controllers.PaymentController
	Notifications *controllers.NotificationController
	Dashboard     *controllers.DashboardController
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter mounts every endpoint under /api/v1. Everything except setup
// and login needs a bearer token; admin-only routes are marked with admin.
func SetupRouter(h Handlers, tokens *services.TokenService, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())
	r.Use(cors.New(corsConfig(corsOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	authed := api.Group("", middleware.Auth(tokens))
	admin := middleware.RequireAdmin()

	auth := api.Group("/auth")
	{
		auth.POST("/setup", h.Auth.Setup)
		auth.POST("/login", h.Auth.Login)
	}
	authMe := authed.Group("/auth")
	{
		authMe.POST("/register", admin, h.Auth.Register)
		authMe.GET("/me", h.Auth.Me)
		authMe.PUT("/update", h.Auth.UpdateProfile)
	}

	users := authed.Group("/users")
	{
		users.GET("", h.Users.GetUsers)
		users.GET("/:id", h.Users.GetUser)
		users.PUT("/:id", h.Users.UpdateUser)
		users.DELETE("/:id", h.Users.DeleteUser)
	}

	rooms := authed.Group("/rooms")
	{
		rooms.GET("", h.Rooms.GetRooms)
		// static paths before /:id
		rooms.GET("/available", h.Rooms.GetAvailableRooms)
		rooms.GET("/occupied", h.Rooms.GetOccupiedRooms)
		rooms.GET("/:id", h.Rooms.GetRoom)
		rooms.GET("/:id/guests", h.Rooms.GetRoomGuests)
		rooms.POST("", admin, h.Rooms.CreateRoom)
		rooms.PUT("/:id", admin, h.Rooms.UpdateRoom)
		rooms.DELETE("/:id", admin, h.Rooms.DeleteRoom)
	}

	guests := authed.Group("/guests")
	{
		guests.GET("", h.Guests.GetGuests)
		guests.GET("/active", h.Guests.GetActiveGuests)
		guests.GET("/inactive", h.Guests.GetInactiveGuests)
		guests.GET("/search", h.Guests.SearchGuests)
		guests.GET("/:id", h.Guests.GetGuest)
		guests.GET("/:id/history", h.Guests.GetGuestHistory)
		guests.POST("", h.Guests.CheckIn)
		guests.PUT("/:id", h.Guests.UpdateGuest)
		guests.POST("/:id/checkout", h.Guests.CheckOut)
		guests.POST("/:id/transfer", h.Guests.TransferRoom)
		guests.POST("/:id/reactivate", h.Guests.Reactivate)
		guests.DELETE("/:id", admin, h.Guests.DeleteGuest)
	}

	payments := authed.Group("/payments")
	{
		payments.GET("", h.Payments.GetPayments)
		payments.GET("/due", h.Payments.GetDuePayments)
		payments.GET("/overdue", h.Payments.GetOverduePayments)
		payments.GET("/guest/:guest_id", h.Payments.GetGuestPayments)
		payments.GET("/:id", h.Payments.GetPayment)
		payments.POST("", h.Payments.CreatePayment)
		payments.POST("/generate-monthly", admin, h.Payments.GenerateMonthlyPayments)
		payments.PUT("/:id", h.Payments.UpdatePayment)
		payments.DELETE("/:id", admin, h.Payments.DeletePayment)
	}

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", h.Notifications.GetNotifications)
		notifications.GET("/guest/:guest_id", h.Notifications.GetGuestNotifications)
		notifications.GET("/:id", h.Notifications.GetNotification)
		notifications.POST("", h.Notifications.CreateNotification)
		notifications.POST("/send-reminders", admin, h.Notifications.SendReminders)
		notifications.POST("/send-overdue", admin, h.Notifications.SendOverdueAlerts)
		notifications.PUT("/:id", h.Notifications.UpdateNotification)
		notifications.DELETE("/:id", admin, h.Notifications.DeleteNotification)
	}

	dashboard := authed.Group("/dashboard")
	{
		dashboard.GET("/summary", h.Dashboard.Summary)
		dashboard.GET("/due-this-week", h.Dashboard.DueThisWeek)
		dashboard.GET("/new-guests", h.Dashboard.NewGuests)
		dashboard.GET("/vacant-rooms", h.Dashboard.VacantRooms)
		dashboard.GET("/monthly-collection", h.Dashboard.MonthlyCollection)
		dashboard.GET("/occupancy-rate", h.Dashboard.OccupancyRate)
	}

	reports := authed.Group("/reports")
	{
		reports.GET("/occupancy", h.Dashboard.OccupancyReport)
		reports.GET("/rent", h.Dashboard.RentReport)
		reports.GET("/guests", h.Dashboard.GuestsReport)
		reports.GET("/payments", h.Dashboard.PaymentsReport)
	}

	return r
}

package routes

import (
	"synca/controllers"
	middlewares "synca/middleware"
	"synca/models"
	"synca/services"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
)

func SetupRoutes(router *gin.Engine, svc *services.Services, m *melody.Melody) {
	authController := controllers.NewAuthController(svc.Auth)
	catalogController := controllers.NewCatalogController(svc.Catalog, svc.Reviews)
	bookingController := controllers.NewBookingController(svc.Bookings)
	inventoryController := controllers.NewInventoryController(svc.Inventory)
	ownerController := controllers.NewOwnerController(svc.Dashboard, svc.Properties)
	profileController := controllers.NewProfileController(svc.Profiles)
	notificationController := controllers.NewNotificationController(svc.Notifications, m)

	tokens := svc.Tokens
	anyUser := middlewares.AuthMiddleware(tokens)
	student := middlewares.AuthMiddleware(tokens, models.RoleStudent)
	owner := middlewares.AuthMiddleware(tokens, models.RoleOwner)

	router.Use(middlewares.SessionMiddleware())

	v1 := router.Group("/api/v1")
	v1.POST("/auth/register", authController.Register)
	v1.POST("/auth/login", authController.Login)
	v1.GET("/auth/me", anyUser, authController.Me)

	v1.GET("/pgs", catalogController.ListPGs)
	v1.GET("/pgs/areas", catalogController.Areas)
	v1.GET("/pgs/filters/last", catalogController.LastFilters)
	v1.DELETE("/pgs/filters/last", catalogController.ClearLastFilters)
	v1.GET("/pgs/:id", catalogController.Detail)
	v1.GET("/pgs/:id/reviews", middlewares.OptionalAuth(tokens), catalogController.Reviews)
	v1.POST("/pgs/:id/reviews", student, catalogController.SubmitReview)

	v1.GET("/beds/:id/quote", student, bookingController.Quote)
	v1.POST("/beds/:id/bookings", student, bookingController.CreateOnline)
	v1.GET("/bookings/:id", anyUser, bookingController.Detail)

	studentGroup := v1.Group("/student", student)
	studentGroup.GET("/bookings", bookingController.StudentBookings)
	studentGroup.PUT("/bookings/:id/dates", bookingController.UpdateDates)
	studentGroup.POST("/bookings/:id/cancel", bookingController.StudentCancel)
	studentGroup.GET("/profile", profileController.GetProfile)
	studentGroup.PUT("/profile", profileController.UpdateProfile)
	studentGroup.PUT("/password", profileController.ChangePassword)

	v1.POST("/profile/photo", anyUser, profileController.UploadPhoto)

	ownerGroup := v1.Group("/owner", owner)
	ownerGroup.GET("/dashboard", ownerController.Dashboard)
	ownerGroup.GET("/pgs", ownerController.ListProperties)
	ownerGroup.POST("/pgs", ownerController.CreateProperty)
	ownerGroup.PUT("/pgs/:id", ownerController.UpdateProperty)
	ownerGroup.POST("/pgs/:id/images", ownerController.UploadImages)
	ownerGroup.POST("/pgs/:id/rooms", inventoryController.CreateRoom)
	ownerGroup.POST("/pgs/:id/beds", inventoryController.CreateBed)
	ownerGroup.GET("/beds/available", inventoryController.AvailableBeds)
	ownerGroup.PUT("/beds/:id/availability", inventoryController.SetAvailability)
	ownerGroup.POST("/bookings/offline", bookingController.CreateOffline)
	ownerGroup.POST("/bookings/:id/approve", bookingController.Approve)
	ownerGroup.POST("/bookings/:id/cancel", bookingController.OwnerCancel)
	ownerGroup.PUT("/bookings/:id/occupant", bookingController.ReassignOccupant)

	v1.GET("/notifications", anyUser, notificationController.GetNotifyByUser)
	router.GET("/ws", anyUser, notificationController.Connect)
}

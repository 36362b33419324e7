package api

import (
	"log"
	stdhttp "net/http"

	h "redapi/internal/http/handlers"
	"redapi/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the request surface around the API handler set.
func NewRouter(api h.API, corsOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(corsOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	root := r.Group("/api")
	{
		root.GET("/health", api.Health)
		root.GET("/db-check", api.DBHealth)

		root.GET("/availability", api.PublicAvailability)
		root.GET("/presentation-types", api.ListPresentationTypes)

		bookings := root.Group("/bookings")
		bookings.POST("", api.CreateBooking)
		bookings.GET("/cancellations/:token", api.GetBookingForCancellation)
		bookings.POST("/cancellations/:token", api.CancelBooking)

		admin := root.Group("/admin")
		admin.POST("/auth/login", api.AdminLogin)

		gated := admin.Group("", middleware.AdminAuth(api.Sessions))
		gated.POST("/auth/logout", api.AdminLogout)

		gated.GET("/bookings", api.AdminListBookings)
		gated.GET("/bookings/report", api.AdminBookingsReport)
		gated.PATCH("/bookings/:id/status", api.AdminUpdateBookingStatus)

		gated.GET("/availability", api.AdminListAvailability)
		gated.POST("/availability", api.AdminCreateAvailability)
		gated.PATCH("/availability/:id", api.AdminUpdateAvailability)
		gated.DELETE("/availability/:id", api.AdminDisableAvailability)

		gated.POST("/presentation-types", api.CreatePresentationType)
	}

	return r
}

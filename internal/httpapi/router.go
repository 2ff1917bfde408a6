package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	CORSOrigins []string
	Log         *logrus.Logger
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(cfg.Log))

	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")
	{
		api.POST("/auth/login", h.Login)

		api.GET("/districts", h.ListDistricts)
		api.GET("/districts/:id", h.GetDistrict)
		api.GET("/districts/:id/parks", h.ListDistrictParks)
		api.GET("/parks", h.ListParks)
		api.GET("/parks/:id", h.GetPark)
		api.GET("/parks/:id/price", h.PreviewPrice)

		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/:ref", h.GetBooking)
		api.PUT("/bookings/:ref/payment", h.RecordPayment)
		api.PUT("/bookings/:ref/print", h.MarkPrinted)
		api.PUT("/bookings/:ref/download", h.MarkDownloaded)
	}

	admin := api.Group("/admin")
	admin.Use(AuthRequired(h.auth, cfg.Log))
	{
		admin.GET("/me", h.Me)

		admin.GET("/tickets", h.ListTickets)
		admin.GET("/tickets/:ref", h.GetTicket)
		admin.GET("/tickets/:ref/events", h.TicketHistory)
		admin.PUT("/tickets/:ref/use", h.MarkTicketUsed)
		admin.PUT("/tickets/:ref/cancel", h.CancelTicket)
		admin.DELETE("/tickets/:ref", h.DeleteTicket)

		admin.POST("/districts", h.CreateDistrict)
		admin.PUT("/districts/:id", h.UpdateDistrict)
		admin.DELETE("/districts/:id", h.DeleteDistrict)

		admin.GET("/parks", h.ListAllParks)
		admin.POST("/parks", h.CreatePark)
		admin.PUT("/parks/:id", h.UpdatePark)
		admin.PUT("/parks/:id/active", h.SetParkActive)
		admin.DELETE("/parks/:id", h.DeletePark)

		admin.GET("/users", h.ListUsers)
		admin.POST("/users", h.CreateUser)
		admin.PUT("/users/:id", h.UpdateUser)

		admin.GET("/analytics/sales", h.SalesReport)
		admin.GET("/analytics/visitors", h.VisitorReport)
		admin.GET("/analytics/popularity", h.ParkPopularity)
	}

	router.NoRoute(func(c *gin.Context) {
		RespondWithError(c, http.StatusNotFound, "NOT_FOUND", "Route not found.")
	})

	return router
}

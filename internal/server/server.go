package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"frontdesk/internal/checkin"
	"frontdesk/internal/config"
	"frontdesk/internal/guest"
	"frontdesk/internal/ledger"
	"frontdesk/internal/logger"
	"frontdesk/internal/member"
	"frontdesk/internal/scheduling"
	"frontdesk/internal/trainer"

	"github.com/gin-gonic/gin"
)

// Handlers groups the feature handlers mounted on the router.
type Handlers struct {
	Scheduling *scheduling.Handler
	CheckIn    *checkin.Handler
	Members    *member.Handler
	Guests     *guest.Handler
	Trainers   *trainer.Handler
	Ledger     *ledger.Handler
}

// HealthCheck describes the storage backend reported by /health. Ping may be
// nil for in-memory storage.
type HealthCheck struct {
	Storage string
	Ping    func(ctx context.Context) error
}

type Server struct {
	router  *gin.Engine
	http    *http.Server
	limiter *RateLimiter
}

func New(cfg *config.Config, h Handlers, health HealthCheck) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLoggingMiddleware(), MetricsMiddleware(), corsMiddleware())

	s := &Server{router: router}
	if cfg.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 3*time.Minute)
		router.Use(s.limiter.Middleware())
	}

	router.GET("/health", Health(health))
	router.GET("/metrics", Metrics())

	classes := router.Group("/classes")
	{
		classes.POST("", h.Scheduling.ScheduleClass)
		classes.GET("", h.Scheduling.ListClasses)
		classes.GET("/:classID", h.Scheduling.GetClass)
		classes.PUT("/:classID", h.Scheduling.RescheduleClass)
		classes.POST("/:classID/bookings", h.Scheduling.BookAttendee)
		classes.DELETE("/:classID/bookings/:kind/:attendeeID", h.Scheduling.CancelBooking)
	}
	router.GET("/rooms/available", h.Scheduling.AvailableRooms)

	members := router.Group("/members")
	{
		members.POST("", h.Members.Enroll)
		members.GET("/:memberID", h.Members.Get)
		members.POST("/:memberID/renew", h.Members.Renew)
		members.POST("/:memberID/freeze", h.Members.Freeze)
		members.POST("/:memberID/unfreeze", h.Members.Unfreeze)
		members.GET("/:memberID/eligibility", h.CheckIn.MemberEligibility)
		members.POST("/:memberID/check-ins", h.CheckIn.CheckInMember)
		members.GET("/:memberID/ledger", h.Ledger.Statement)
		members.POST("/:memberID/ledger", h.Ledger.Record)
	}

	guests := router.Group("/guests")
	{
		guests.POST("", h.Guests.Register)
		guests.GET("/:guestID", h.Guests.Get)
		guests.GET("/:guestID/eligibility", h.CheckIn.GuestEligibility)
		guests.POST("/:guestID/check-in", h.CheckIn.CheckInGuest)
		guests.POST("/:guestID/check-out", h.CheckIn.CheckOutGuest)
		guests.POST("/:guestID/convert", h.CheckIn.ConvertGuest)
	}

	trainers := router.Group("/trainers")
	{
		trainers.POST("", h.Trainers.Register)
		trainers.GET("", h.Trainers.List)
		trainers.GET("/:trainerID", h.Trainers.Get)
	}

	s.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) Start() error {
	logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

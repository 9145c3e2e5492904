package control

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"unliker/pkg/logger"
	"unliker/pkg/unlike"
)

const shutdownTimeout = 5 * time.Second

// SuccessResponse wraps every successful API reply
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is returned for rejected requests
type ErrorResponse struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

// StatusPayload is the status body: the snapshot plus the two rendered lines
type StatusPayload struct {
	unlike.Status
	Progress   string `json:"progress"`
	ErrorText  string `json:"error_line,omitempty"`
	DelayHuman string `json:"delay_human"`
}

func newStatusPayload(s unlike.Status) StatusPayload {
	return StatusPayload{
		Status:     s,
		Progress:   s.ProgressLine(),
		ErrorText:  s.ErrorLine(),
		DelayHuman: s.Delay.String(),
	}
}

// Server is the HTTP control API
type Server struct {
	ctrl   Controller
	runCtx context.Context
	log    logger.Logger
	router *gin.Engine
}

// NewServer builds the router. Runs started over HTTP are bound to runCtx,
// not to the request that started them.
func NewServer(runCtx context.Context, ctrl Controller, log logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}
	s := &Server{
		ctrl:   ctrl,
		runCtx: runCtx,
		log:    log.WithField("component", "http"),
		router: gin.New(),
	}
	s.router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()
	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api/v1")
	api.GET("/status", s.statusHandler)
	api.POST("/start", s.startHandler)
	api.POST("/stop", s.stopHandler)
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("Control API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("Control API stopped")
	return nil
}

func (s *Server) healthHandler(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"status": "ok", "state": s.ctrl.Status().State}, "")
}

func (s *Server) statusHandler(c *gin.Context) {
	respondSuccess(c, http.StatusOK, newStatusPayload(s.ctrl.Status()), "")
}

func (s *Server) startHandler(c *gin.Context) {
	if err := s.ctrl.Start(s.runCtx); err != nil {
		if errors.Is(err, unlike.ErrAlreadyRunning) {
			respondError(c, http.StatusConflict, "ALREADY_RUNNING", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "START_FAILED", err)
		return
	}
	s.log.Info("Run started over HTTP")
	respondSuccess(c, http.StatusAccepted, newStatusPayload(s.ctrl.Status()), "started")
}

func (s *Server) stopHandler(c *gin.Context) {
	if err := s.ctrl.Stop(); err != nil {
		if errors.Is(err, unlike.ErrNotRunning) {
			respondError(c, http.StatusConflict, "NOT_RUNNING", err)
			return
		}
		respondError(c, http.StatusInternalServerError, "STOP_FAILED", err)
		return
	}
	respondSuccess(c, http.StatusAccepted, newStatusPayload(s.ctrl.Status()), "stop requested")
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("HTTP request")
	}
}

func respondSuccess(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, SuccessResponse{Success: true, Data: data, Message: message})
}

func respondError(c *gin.Context, code int, errCode string, err error) {
	c.JSON(code, ErrorResponse{Error: err.Error(), Code: errCode})
}

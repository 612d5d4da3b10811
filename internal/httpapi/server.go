// Package httpapi serves the image collection over HTTP with gin.
//
// Routes:
//
//	POST   /api/images                       multipart upload, field "images"
//	GET    /api/images                       list without content
//	GET    /api/images/search?q=             substring search without content
//	GET    /api/images/:id                   one record with its data URI
//	GET    /api/images/:id/content           raw image bytes
//	GET    /api/images/:id/thumbnail?size=   PNG fitting within size x size
//	DELETE /api/images/:id                   remove one record
//	DELETE /api/images                       remove every record
//	GET    /healthz                          OCR availability
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

// Server runs the HTTP API until its context is canceled.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewRouter registers the API routes on a fresh gin engine.
func NewRouter(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/images", h.UploadImages)
		api.GET("/images", h.ListImages)
		api.DELETE("/images", h.ClearImages)
		api.GET("/images/search", h.SearchImages)
		api.GET("/images/:id", h.GetImage)
		api.GET("/images/:id/content", h.GetImageContent)
		api.GET("/images/:id/thumbnail", h.GetImageThumbnail)
		api.DELETE("/images/:id", h.DeleteImage)
	}

	return router
}

// New creates a server for h listening on addr.
func New(addr string, h *Handler, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(h),
			ReadHeaderTimeout: 10 * time.Second,
			// OCR on a large batch runs inside the request.
			WriteTimeout:   10 * time.Minute,
			MaxHeaderBytes: 1 << 20, // 1 MB
		},
		log: log,
	}
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server is running", zap.String("address", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("Server exited")
	return nil
}

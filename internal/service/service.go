// Package service implements the HTTP side of the contact form: the landing page, the static
// files next to it and the endpoint that stores form submissions.
package service

import (
	"errors"
	"net/http"
	"path"
	"path/filepath"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gitlab.com/dirk.krummacker/contact-form/internal/config"
	"gitlab.com/dirk.krummacker/contact-form/internal/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Messages returned to the browser. The form is Spanish-language.
const (
	msgCreated       = "¡Contacto guardado con éxito!"
	msgRequired      = "Nombre y email son requeridos."
	msgInvalidJSON   = "JSON inválido."
	msgInternalError = "Error interno del servidor."
	msgNotFound      = "Recurso no encontrado."
)

// SetupHttpRouter initializes the router, registers the middleware and all endpoints. The store
// is where submitted contacts are saved; it can be a real database for production use or a test
// double within unit tests.
func SetupHttpRouter(cfg config.Config, store ContactStore) *gin.Engine {
	router := gin.New()

	if cfg.OTEL.Enabled {
		router.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}
	router.Use(middleware.RequestID())
	if cfg.GinLogging {
		router.Use(middleware.Logger())
	} else {
		log.Info().Msg("Turning off HTTP request logging.")
	}
	router.Use(middleware.Recovery(msgInternalError))
	router.Use(middleware.LimitBody(cfg.MaxBodyBytes))
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	pages := &staticFiles{
		root:      gin.Dir(cfg.StaticDir, false),
		indexPath: filepath.Join(cfg.StaticDir, cfg.IndexFile),
	}
	contacts := &contactsAPI{service: NewContactService(store)}

	router.GET("/", pages.index)
	router.HEAD("/", pages.index)
	router.GET("/health", health)
	router.POST("/api/contact", contacts.createContact)
	router.NoRoute(pages.serve)
	return router
}

// contactsAPI binds the contact endpoint to the contact service.
type contactsAPI struct {
	service *ContactService
}

// createContact stores the contact specified in the request's JSON. It responds with the stored
// contact including its newly assigned id.
//
// Example REST API call:
//
//	> curl http://localhost:3000/api/contact --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Ana", "email": "ana@example.com"}'
func (api *contactsAPI) createContact(c *gin.Context) {
	var input ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msgInvalidJSON})
		return
	}

	contact, err := api.service.Create(c.Request.Context(), input)
	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": msgRequired})
	case err != nil:
		middleware.LoggerFrom(c).Error().Err(err).Msg("could not save contact")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": msgInternalError})
	default:
		middleware.LoggerFrom(c).Info().Int64("contact_id", contact.Id).Msg("contact saved")
		c.IndentedJSON(http.StatusCreated, gin.H{"message": msgCreated, "contact": contact})
	}
}

// health responds with 200 as long as the process serves requests. It does not check the
// database, whose failures are reported per request.
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// staticFiles serves the landing page and the files below the static root.
type staticFiles struct {
	root      http.FileSystem
	indexPath string
}

// index responds with the landing page, whatever the query string or body.
func (s *staticFiles) index(c *gin.Context) {
	c.File(s.indexPath)
}

// serve is the fallback for all unregistered routes. GET and HEAD requests for a regular file
// below the static root are answered with that file; everything else is not found. Directory
// listings are never served.
func (s *staticFiles) serve(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		name := path.Clean("/" + c.Request.URL.Path)
		if f, err := s.root.Open(name); err == nil {
			stat, statErr := f.Stat()
			f.Close()
			if statErr == nil && !stat.IsDir() {
				c.FileFromFS(name, s.root)
				return
			}
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": msgNotFound})
}

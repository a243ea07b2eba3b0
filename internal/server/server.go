// Package server serves the task API the board talks to.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/pablasso/quadro/internal/task"
)

const maxBodySize = 1 << 20

const (
	msgInvalidJSON      = "invalid json"
	msgNotFound         = "task not found"
	msgRouteNotFound    = "route not found"
	msgMethodNotAllowed = "method not allowed"
)

// Server wraps the echo instance serving /tasks.
type Server struct {
	echo  *echo.Echo
	store *Store
	log   *log.Logger
}

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// New builds the API server around store.
func New(store *Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New()
		logger.SetOutput(io.Discard)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
	}))
	e.Use(requestLogger(logger))

	Register(e, store)

	return &Server{echo: e, store: store, log: logger}
}

// Register wires the task routes on e.
func Register(e *echo.Echo, store *Store) {
	e.GET("/tasks", listTasks(store))
	e.POST("/tasks", createTask(store))
	e.GET("/tasks/:id", getTask(store))
	e.PUT("/tasks/:id", updateTask(store))
	e.DELETE("/tasks/:id", deleteTask(store))
}

// Handler exposes the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("task api listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func listTasks(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, envelope{Success: true, Data: store.List()})
	}
}

func getTask(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		t, ok := store.Get(task.ID(c.Param("id")))
		if !ok {
			return fail(c, http.StatusNotFound, msgNotFound)
		}
		return c.JSON(http.StatusOK, envelope{Success: true, Data: t})
	}
}

func createTask(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := decodeInput(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, msgInvalidJSON)
		}
		created, err := store.Create(in)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusCreated, envelope{Success: true, Data: created})
	}
}

func updateTask(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, err := decodeInput(c)
		if err != nil {
			return fail(c, http.StatusBadRequest, msgInvalidJSON)
		}
		updated, err := store.Update(task.ID(c.Param("id")), in)
		if err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, envelope{Success: true, Data: updated})
	}
}

func deleteTask(store *Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Delete(task.ID(c.Param("id"))); err != nil {
			return storeError(c, err)
		}
		return c.JSON(http.StatusOK, envelope{Success: true})
	}
}

func decodeInput(c echo.Context) (task.Patch, error) {
	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(c.Request().Body, maxBodySize))
	dec.DisallowUnknownFields()

	var in task.Patch
	if err := dec.Decode(&in); err != nil {
		return task.Patch{}, err
	}
	return in, nil
}

func storeError(c echo.Context, err error) error {
	var verr *task.ValidationError
	switch {
	case errors.Is(err, task.ErrNotFound):
		return fail(c, http.StatusNotFound, msgNotFound)
	case errors.As(err, &verr):
		return fail(c, http.StatusBadRequest, verr.Message)
	default:
		return err
	}
}

func fail(c echo.Context, code int, msg string) error {
	return c.JSON(code, envelope{Success: false, Error: msg})
}

// errorHandler renders echo's own errors in the task envelope.
func errorHandler(logger log.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := http.StatusText(code)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch code {
			case http.StatusNotFound:
				msg = msgRouteNotFound
			case http.StatusMethodNotAllowed:
				msg = msgMethodNotAllowed
			default:
				msg = http.StatusText(code)
			}
		} else {
			logger.WithError(err).Error("request failed")
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = fail(c, code, msg)
		}
		if err != nil {
			logger.WithError(err).Error("failed to write error response")
		}
	}
}

func requestLogger(logger *log.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(log.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	})
}

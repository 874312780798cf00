package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/wak1e7/todolistapp/internal/auth"
	"github.com/wak1e7/todolistapp/internal/config"
	"github.com/wak1e7/todolistapp/internal/handler"
	"github.com/wak1e7/todolistapp/internal/repository"
)

// Register wires routes and middleware. The access policy of every route is
// declared here, next to the route, and enforced by auth.Require before the
// handler runs.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	users repository.UserRepository,
	authHandler *handler.AuthHandler,
	taskHandler *handler.TaskHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Authenticator: verify bearer token if present, then resolve the user
	// record so the role is fresh on every request. Anonymous requests pass
	// through; the per-route policy decides whether that is acceptable.
	api.Use(auth.VerifyToken(cfg.JWTSecret))
	api.Use(auth.ResolveIdentity(users))

	api.POST("/auth/register", authHandler.Register, auth.Require(auth.Public))
	api.POST("/auth/login", authHandler.Login, auth.Require(auth.Public))
	api.PUT("/auth/promote/:username", authHandler.Promote, auth.Require(auth.Admin))
	api.DELETE("/auth/delete/:id", authHandler.DeleteUser, auth.Require(auth.Admin))

	todos := api.Group("/todos", auth.Require(auth.Authenticated))
	todos.POST("", taskHandler.Create)
	todos.GET("", taskHandler.List)
	todos.GET("/pending", taskHandler.ListPending)
	todos.GET("/:id", taskHandler.GetOne)
	todos.PUT("/:id", taskHandler.Replace, auth.Require(auth.Admin))
	todos.PATCH("/:id", taskHandler.PatchCompletion)
	todos.DELETE("/:id", taskHandler.Delete, auth.Require(auth.Admin))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

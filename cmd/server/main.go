package main

import (
	"log"
	"net/http"

	_ "github.com/wak1e7/todolistapp/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/wak1e7/todolistapp/internal/auth"
	"github.com/wak1e7/todolistapp/internal/cache"
	"github.com/wak1e7/todolistapp/internal/config"
	"github.com/wak1e7/todolistapp/internal/db"
	"github.com/wak1e7/todolistapp/internal/handler"
	"github.com/wak1e7/todolistapp/internal/model"
	"github.com/wak1e7/todolistapp/internal/repository"
	"github.com/wak1e7/todolistapp/internal/router"
	"github.com/wak1e7/todolistapp/internal/service"
)

// @title Todo List API
// @version 1.0
// @description Multi-user task tracking API with JWT authentication, per-user task ownership and an admin role.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Task{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	authService := service.NewAuthService(userRepo, jwtService)
	userService := service.NewUserService(userRepo, cacheClient)
	taskService := service.NewTaskService(taskRepo, userRepo, cacheClient)

	authHandler := handler.NewAuthHandler(authService, userService)
	taskHandler := handler.NewTaskHandler(taskService)

	router.Register(e, cfg, userRepo, authHandler, taskHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

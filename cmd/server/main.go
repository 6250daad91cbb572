package main

import (
	_ "taskflow/docs"
	"taskflow/internal/config"
	"taskflow/internal/logger"
	"taskflow/internal/server"

	"go.uber.org/zap"
)

// @title           TaskFlow API
// @version         1.0
// @description     Project collaboration engine: projects, members, tasks,
// @description     comments, attachments, activity and notifications.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	log := logger.New()
	defer log.Sync()

	cfg := config.Load()

	s, err := server.Init(cfg, log)
	if err != nil {
		log.Fatal("server initialization failed", zap.Error(err))
	}

	s.Run()
}

package main

import (
	"spa-portal/internal/app"
	"spa-portal/internal/shared/apperror"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	apperror.Init()

	if err := app.RunSeeder(); err != nil {
		logger.Fatal("run seeder failed", zap.Error(err))
	}
}

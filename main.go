package main

import (
	"github.com/feedbackhub/feedbackhub/config"
	"github.com/feedbackhub/feedbackhub/models"
	"github.com/feedbackhub/feedbackhub/routes"
	"github.com/feedbackhub/feedbackhub/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Comment{}, &models.SubComment{})

	r := routes.SetupRouter(db)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

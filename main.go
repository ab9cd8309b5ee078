package main

import (
	"github.com/fieldflow/timelog_service/config"
	"github.com/fieldflow/timelog_service/internal/api"
)

func main() {
	cfg := config.LoadConfig()
	api.StartServer(cfg)
}

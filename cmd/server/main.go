package main

import (
	"log"

	"gondolatrack/internal/config"
	"gondolatrack/internal/database"
	"gondolatrack/internal/server"
	"gondolatrack/internal/upstream"
)

func main() {
	cfg := config.Load()
	db := database.Init(cfg)

	api := upstream.New(cfg.APIBaseURL, cfg.APITimeout, cfg.TokenCookie)
	app := server.New(cfg, api, db)

	log.Println("API GondolaTrack em", cfg.APIBaseURL)
	log.Println("Servidor rodando na porta:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}

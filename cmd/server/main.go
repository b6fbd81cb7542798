package main

import (
	"github.com/joho/godotenv"

	"okrplan/internal/app/server"
)

func main() {
	_ = godotenv.Load()
	server.Run()
}

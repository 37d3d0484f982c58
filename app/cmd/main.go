package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"claimrag/app/server"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	// The completion API is useless without a credential; refuse to serve.
	if os.Getenv("GROQ_API_KEY") == "" {
		log.Fatal("GROQ_API_KEY not found in .env file. Please set it up.")
	}

	s := server.NewServer(os.Getenv("SERVER_ADDR"))

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func mustLoadEnvVariables() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"claimrag/loader/service"
	"claimrag/model"
	"claimrag/store"
	"claimrag/types"

	"github.com/joho/godotenv"
)

func init() {
	mustLoadEnvVariables()
}

func main() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database ", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables ", err)
		return
	}

	embedder := model.NewOllamaEmbedderFromEnv()
	collection, err := pool.EnsureCollection(ctx, types.CollectionName, embedder.Model())
	if err != nil {
		log.Fatal("error to ensure collection ", err)
		return
	}

	csvPath := os.Getenv("CLAIMS_CSV")
	if csvPath == "" {
		csvPath = "insurance_claims.csv"
	}

	if err := service.New(pool, embedder, collection.ID, csvPath).Run(ctx); err != nil {
		log.Fatal("ingestion failed: ", err)
	}

	log.Println("Closing database connection pool...")
	if err := pool.Close(); err != nil {
		log.Printf("error closing pool: %v\n", err)
	} else {
		log.Println("Database connection pool closed successfully")
	}
}

func mustLoadEnvVariables() {
	err := godotenv.Load()
	if err != nil {
		log.Fatal("Error loading .env file")
	}
}

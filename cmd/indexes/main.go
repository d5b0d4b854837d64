package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	dbClient, err := mongodb.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer dbClient.Disconnect(ctx)

	db := mongodb.NewDB(dbClient)
	database := dbClient.Database(db.GetDatabaseName())

	if err := mongodb.CreateAllIndexes(ctx, database); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	fmt.Println("All indexes created successfully")
}

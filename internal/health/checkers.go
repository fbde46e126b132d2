package health

import (
	"context"

	"lifeops/internal/shared/database"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/gorm"
)

// Database issues SELECT 1
func Database(db *gorm.DB) Checker {
	return Checker{Name: "database", Check: func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}}
}

// Redis sends PING
func Redis(client *redis.Client) Checker {
	return Checker{Name: "redis", Check: func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}}
}

// Mongo pings the primary
func Mongo(client *mongo.Client) Checker {
	return Checker{Name: "mongodb", Check: func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}}
}

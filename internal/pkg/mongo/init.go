package mongo

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"GymChat/internal/api/config"
	"GymChat/internal/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const conversationIndex = "conversation_timeline"

// InitMongo 连接消息库并确保会话索引存在
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetAppName("gymchat-relay").
		SetServerSelectionTimeout(5 * time.Second).
		SetMonitor(logger.NewMongoMonitor())
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	if err = ensureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("mongo index %s: %w", conversationIndex, err)
	}

	log.Info("MongoDB initialized", "db", cfg.Database)
	return db, nil
}

// 会话双向查询都落在 (sender_id, receiver_id, timestamp) 上
func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(messageCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sender_id", Value: 1},
			{Key: "receiver_id", Value: 1},
			{Key: "timestamp", Value: 1},
		},
		Options: options.Index().SetName(conversationIndex),
	})
	return err
}

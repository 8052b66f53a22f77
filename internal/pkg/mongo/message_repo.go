package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const messageCollection = "message"

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetConversation(ctx context.Context, userA, userB uint64) ([]*Message, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection(messageCollection),
	}
}

// SaveMessage 将消息存入 MongoDB
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	_, err := s.col.InsertOne(ctx, msg)
	return err
}

// GetConversation 两个 id 之间双向的全部消息，时间升序
// 只按数字 id 匹配，不区分角色
func (s *messageRepoImpl) GetConversation(ctx context.Context, userA, userB uint64) ([]*Message, error) {
	filter := bson.M{"$or": []bson.M{
		{"sender_id": userA, "receiver_id": userB},
		{"sender_id": userB, "receiver_id": userA},
	}}

	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}

	return messages, nil
}

package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/knowledgelink/internal/model"
)

// usersCollection はユーザーを格納するコレクション名。
const usersCollection = "users"

// MongoUserRepo はMongoDBを使用したユーザーリポジトリ。
type MongoUserRepo struct {
	col *mongo.Collection
}

// NewMongoUserRepo はMongoUserRepoを生成する。
func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{col: db.Collection(usersCollection)}
}

// Upsert はsubject識別子をキーにユーザーを作成または更新する。
// ログイン成功のたびに呼ばれ、email・name・updatedAtを最新値で上書きする。
func (r *MongoUserRepo) Upsert(ctx context.Context, user *model.User) error {
	filter := bson.M{"sub": user.Sub}
	update := bson.M{"$set": bson.M{
		"sub":       user.Sub,
		"email":     user.Email,
		"name":      user.Name,
		"updatedAt": user.UpdatedAt,
	}}

	_, err := r.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserRepository = (*MongoUserRepo)(nil)

package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hitoshi/knowledgelink/internal/model"
)

// linksCollection はリンクを格納するコレクション名。
const linksCollection = "links"

// linkDoc はlinksコレクションのBSONドキュメント表現。
type linkDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	UserID           string             `bson:"userId"`
	URL              string             `bson:"url"`
	Title            string             `bson:"title"`
	Summary          string             `bson:"summary"`
	ContentEmbedding []float64          `bson:"content_embedding,omitempty"`
	Favicon          string             `bson:"favicon"`
	CreatedAt        time.Time          `bson:"createdAt"`
}

// toModel はBSONドキュメントをドメインモデルに変換する。
func (d *linkDoc) toModel() *model.Link {
	return &model.Link{
		ID:               d.ID.Hex(),
		UserID:           d.UserID,
		URL:              d.URL,
		Title:            d.Title,
		Summary:          d.Summary,
		ContentEmbedding: d.ContentEmbedding,
		Favicon:          d.Favicon,
		CreatedAt:        d.CreatedAt,
	}
}

// MongoLinkRepo はMongoDBを使用したリンクリポジトリ。
// 近傍検索はAtlas Vector Searchインデックスに委譲する。
type MongoLinkRepo struct {
	col         *mongo.Collection
	vectorIndex string
}

// NewMongoLinkRepo はMongoLinkRepoを生成する。
// vectorIndexにはcontent_embeddingフィールドに張られた
// Atlas Vector Searchインデックス名を指定する。
func NewMongoLinkRepo(db *mongo.Database, vectorIndex string) *MongoLinkRepo {
	return &MongoLinkRepo{
		col:         db.Collection(linksCollection),
		vectorIndex: vectorIndex,
	}
}

// Create はリンクを1件挿入し、採番されたObjectIDの16進表現を返す。
func (r *MongoLinkRepo) Create(ctx context.Context, link *model.Link) (string, error) {
	doc := linkDoc{
		UserID:           link.UserID,
		URL:              link.URL,
		Title:            link.Title,
		Summary:          link.Summary,
		ContentEmbedding: link.ContentEmbedding,
		Favicon:          link.Favicon,
		CreatedAt:        link.CreatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert link: %w", err)
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type: %T", res.InsertedID)
	}
	return id.Hex(), nil
}

// ListByUser は指定ユーザーの全リンクを作成日時の降順で返す。
// content_embeddingは一覧表示で不要かつ大きいため、projectionで除外する。
func (r *MongoLinkRepo) ListByUser(ctx context.Context, userID string) ([]*model.Link, error) {
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID}, listOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeLinks(ctx, cursor)
}

// SearchByVector はAtlasの$vectorSearchステージで近傍検索を行う。
// 検索対象はフィルタで指定ユーザーのドキュメントに限定される。
func (r *MongoLinkRepo) SearchByVector(ctx context.Context, userID string, queryVector []float64, limit, numCandidates int) ([]*model.Link, error) {
	pipeline := searchPipeline(r.vectorIndex, userID, queryVector, limit, numCandidates)

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to run vector search: %w", err)
	}
	defer cursor.Close(ctx)

	return decodeLinks(ctx, cursor)
}

// listOptions は一覧取得のFindオプションを構築する。
// ソートはcreatedAtの降順、projectionでcontent_embeddingを除外する。
func listOptions() *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.D{{Key: "content_embedding", Value: 0}})
}

// searchPipeline は$vectorSearch集約パイプラインを構築する。
// numCandidatesは最終結果をランク付けする前に検査する近似候補数。
func searchPipeline(index, userID string, queryVector []float64, limit, numCandidates int) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: index},
			{Key: "path", Value: "content_embedding"},
			{Key: "queryVector", Value: queryVector},
			{Key: "numCandidates", Value: numCandidates},
			{Key: "limit", Value: limit},
			{Key: "filter", Value: bson.D{{Key: "userId", Value: userID}}},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "content_embedding", Value: 0},
		}}},
	}
}

// decodeLinks はカーソルの全ドキュメントをドメインモデルに変換する。
func decodeLinks(ctx context.Context, cursor *mongo.Cursor) ([]*model.Link, error) {
	var docs []linkDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode links: %w", err)
	}

	links := make([]*model.Link, 0, len(docs))
	for i := range docs {
		links = append(links, docs[i].toModel())
	}
	return links, nil
}

// compile-time interface check
var _ LinkRepository = (*MongoLinkRepo)(nil)

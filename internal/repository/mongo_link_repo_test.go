package repository

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSearchPipeline_Shape(t *testing.T) {
	vec := []float64{0.1, 0.2, 0.3}
	pipeline := searchPipeline("content_vector_index", "google-sub-123", vec, 10, 200)

	if len(pipeline) != 2 {
		t.Fatalf("pipeline stages = %d, want 2", len(pipeline))
	}

	// 第1ステージ: $vectorSearch
	stage := pipeline[0]
	if stage[0].Key != "$vectorSearch" {
		t.Fatalf("first stage = %q, want $vectorSearch", stage[0].Key)
	}
	spec, ok := stage[0].Value.(bson.D)
	if !ok {
		t.Fatalf("$vectorSearch spec type = %T, want bson.D", stage[0].Value)
	}

	fields := map[string]any{}
	for _, e := range spec {
		fields[e.Key] = e.Value
	}
	if fields["index"] != "content_vector_index" {
		t.Errorf("index = %v, want content_vector_index", fields["index"])
	}
	if fields["path"] != "content_embedding" {
		t.Errorf("path = %v, want content_embedding", fields["path"])
	}
	if fields["numCandidates"] != 200 {
		t.Errorf("numCandidates = %v, want 200", fields["numCandidates"])
	}
	if fields["limit"] != 10 {
		t.Errorf("limit = %v, want 10", fields["limit"])
	}

	filter, ok := fields["filter"].(bson.D)
	if !ok || len(filter) != 1 || filter[0].Key != "userId" || filter[0].Value != "google-sub-123" {
		t.Errorf("filter = %v, want {userId: google-sub-123}", fields["filter"])
	}

	// 第2ステージ: 埋め込みベクトルの除外
	project := pipeline[1]
	if project[0].Key != "$project" {
		t.Fatalf("second stage = %q, want $project", project[0].Key)
	}
	projSpec, ok := project[0].Value.(bson.D)
	if !ok || len(projSpec) != 1 || projSpec[0].Key != "content_embedding" {
		t.Errorf("$project spec = %v, want content_embedding exclusion", project[0].Value)
	}
}

func TestListOptions_SortsNewestFirstAndExcludesEmbedding(t *testing.T) {
	opts := listOptions()

	// ソート: createdAtの降順
	sort, ok := opts.Sort.(bson.D)
	if !ok {
		t.Fatalf("sort type = %T, want bson.D", opts.Sort)
	}
	if len(sort) != 1 || sort[0].Key != "createdAt" || sort[0].Value != -1 {
		t.Errorf("sort = %v, want {createdAt: -1}", sort)
	}

	// projection: 埋め込みベクトルの除外
	proj, ok := opts.Projection.(bson.D)
	if !ok {
		t.Fatalf("projection type = %T, want bson.D", opts.Projection)
	}
	if len(proj) != 1 || proj[0].Key != "content_embedding" || proj[0].Value != 0 {
		t.Errorf("projection = %v, want {content_embedding: 0}", proj)
	}
}

func TestLinkDoc_ToModel(t *testing.T) {
	id := primitive.NewObjectID()
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	doc := linkDoc{
		ID:        id,
		UserID:    "google-sub-123",
		URL:       "https://example.com/article",
		Title:     "Example Article",
		Summary:   "- point one\n- point two",
		Favicon:   "https://www.google.com/s2/favicons?domain=example.com&sz=64",
		CreatedAt: created,
	}

	link := doc.toModel()

	if link.ID != id.Hex() {
		t.Errorf("ID = %q, want %q", link.ID, id.Hex())
	}
	if link.UserID != doc.UserID {
		t.Errorf("UserID = %q, want %q", link.UserID, doc.UserID)
	}
	if link.Title != doc.Title {
		t.Errorf("Title = %q, want %q", link.Title, doc.Title)
	}
	if !link.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", link.CreatedAt, created)
	}
	if len(link.ContentEmbedding) != 0 {
		t.Errorf("ContentEmbedding should be empty in projected reads, got %d values", len(link.ContentEmbedding))
	}
}

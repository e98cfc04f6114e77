// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/knowledgelink/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Upsert はsubject識別子をキーにユーザーを作成または更新する。
	// 同一subでの再ログインはレコードを重複させない。
	Upsert(ctx context.Context, user *model.User) error
}

// LinkRepository は保存済みリンクの永続化インターフェース。
type LinkRepository interface {
	// Create はリンクを1件挿入し、採番された識別子を返す。
	Create(ctx context.Context, link *model.Link) (string, error)

	// ListByUser は指定ユーザーの全リンクを作成日時の降順で返す。
	// 埋め込みベクトルは結果に含めない。
	ListByUser(ctx context.Context, userID string) ([]*model.Link, error)

	// SearchByVector はクエリベクトルに対する近傍検索を行う。
	// 検索対象は指定ユーザーのリンクに限定され、埋め込みベクトルは結果に含めない。
	SearchByVector(ctx context.Context, userID string, queryVector []float64, limit, numCandidates int) ([]*model.Link, error)
}

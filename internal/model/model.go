// Package model はドメインモデルを定義する。
package model

import "time"

// User はGoogleアカウントでログインしたサービス利用ユーザーを表す。
// IdPのsubject識別子をキーに、ログイン成功のたびにアップサートされる。
type User struct {
	Sub       string
	Email     string
	Name      string
	UpdatedAt time.Time
}

// Claims はセッショントークンに載せる認証済みユーザーの情報を表す。
// トークンはステートレスで、サーバー側には保存されない。
type Claims struct {
	Sub   string
	Email string
	Name  string
}

// Link は保存済みWebページを表す。
// 作成後に更新・削除されることはない（該当エンドポイントが存在しない）。
type Link struct {
	ID               string
	UserID           string // 所有ユーザーのsubject識別子
	URL              string
	Title            string
	Summary          string    // Gemini未設定・失敗時は空
	ContentEmbedding []float64 // Gemini未設定・失敗時は空
	Favicon          string
	CreatedAt        time.Time
}

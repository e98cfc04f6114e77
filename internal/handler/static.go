package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticHandler はビルド済みフロントエンドの静的配信ハンドラー。
type StaticHandler struct {
	dir        string
	fileServer http.Handler
}

// NewStaticHandler はStaticHandlerを生成する。
// dirが存在しない場合はnilを返し、静的配信は無効になる。
func NewStaticHandler(dir string) *StaticHandler {
	if dir == "" {
		return nil
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil
	}
	return &StaticHandler{
		dir:        dir,
		fileServer: http.FileServer(http.Dir(dir)),
	}
}

// ServeHTTP は静的ファイルを配信する。
// 存在しないパスはSPAのクライアントルーティングのためindex.htmlに
// フォールバックする。
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cleaned := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if cleaned == "." {
		cleaned = "index.html"
	}
	// filepath.Cleanは先頭の..を残すため、dir外を指すパスはここで弾く
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		http.NotFound(w, r)
		return
	}

	full := filepath.Join(h.dir, cleaned)
	if _, err := os.Stat(full); os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
		return
	}

	h.fileServer.ServeHTTP(w, r)
}

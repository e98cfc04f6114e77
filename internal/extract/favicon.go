package extract

import (
	"fmt"
	"net/url"
)

// FaviconURL はページURLからfavicon画像のURLを導出する。
// 取得はGoogleのfaviconサービスに委譲する。ホストが取れない場合は空文字列を返す。
func FaviconURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	host := parsed.Hostname()
	if host == "" {
		return ""
	}
	return fmt.Sprintf("https://www.google.com/s2/favicons?domain=%s&sz=64", host)
}

package security

import (
	"testing"
	"time"
)

func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "通常のHTTPS URL", url: "https://example.com/article", wantErr: false},
		{name: "通常のHTTP URL", url: "http://example.com", wantErr: false},
		{name: "空URL", url: "", wantErr: true},
		{name: "fileスキーム", url: "file:///etc/passwd", wantErr: true},
		{name: "ftpスキーム", url: "ftp://example.com", wantErr: true},
		{name: "ホストなし", url: "https://", wantErr: true},
		{name: "ループバックIP", url: "http://127.0.0.1/admin", wantErr: true},
		{name: "プライベートIP 10系", url: "http://10.0.0.5/", wantErr: true},
		{name: "プライベートIP 192.168系", url: "http://192.168.1.1/", wantErr: true},
		{name: "メタデータIP", url: "http://169.254.169.254/latest/meta-data/", wantErr: true},
		{name: "localhost", url: "http://localhost:8080/", wantErr: true},
		{name: "IPv6ループバック", url: "http://[::1]/", wantErr: true},
		{name: "パブリックIP", url: "http://93.184.216.34/", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateURL_SchemeCaseInsensitive(t *testing.T) {
	guard := NewSSRFGuard()

	if err := guard.ValidateURL("HTTPS://example.com"); err != nil {
		t.Errorf("uppercase scheme should be allowed, got %v", err)
	}
}

func TestNewSafeClient_ReturnsClient(t *testing.T) {
	guard := NewSSRFGuard()

	client := guard.NewSafeClient(5 * time.Second)
	if client == nil {
		t.Fatal("NewSafeClient returned nil")
	}
}

package config

import (
	"testing"
	"time"
)

// TestLoad は環境変数からの設定構築を検証する。
// 環境変数の操作を伴うためt.Parallel()は使用しない。
func TestLoad(t *testing.T) {
	t.Run("未設定の場合はデフォルト値が使われること", func(t *testing.T) {
		cfg := Load()

		if cfg.Port != "8080" {
			t.Errorf("Port = %q, want %q", cfg.Port, "8080")
		}
		if cfg.NominatimURL != "https://nominatim.openstreetmap.org" {
			t.Errorf("NominatimURL = %q", cfg.NominatimURL)
		}
		if cfg.UpstreamTimeout != 10*time.Second {
			t.Errorf("UpstreamTimeout = %v, want 10s", cfg.UpstreamTimeout)
		}
	})

	t.Run("環境変数が設定値を上書きすること", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("JWT_SECRET", "issuer-secret")
		t.Setenv("UPSTREAM_TIMEOUT", "3s")

		cfg := Load()
		if cfg.Port != "9090" {
			t.Errorf("Port = %q, want %q", cfg.Port, "9090")
		}
		if cfg.JWTSecret != "issuer-secret" {
			t.Errorf("JWTSecret = %q", cfg.JWTSecret)
		}
		if cfg.UpstreamTimeout != 3*time.Second {
			t.Errorf("UpstreamTimeout = %v, want 3s", cfg.UpstreamTimeout)
		}
	})

	t.Run("パース不能なタイムアウトはデフォルト値になること", func(t *testing.T) {
		t.Setenv("UPSTREAM_TIMEOUT", "not-a-duration")

		cfg := Load()
		if cfg.UpstreamTimeout != 10*time.Second {
			t.Errorf("UpstreamTimeout = %v, want 10s", cfg.UpstreamTimeout)
		}
	})
}

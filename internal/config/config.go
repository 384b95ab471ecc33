// Package config はゲートウェイの設定を環境変数から構築する。
//
// すべての依存コンポーネントは起動時にここで構築された設定を明示的に
// 受け取る。遅延初期化されるプロセス全域のシングルトンは持たない。
package config

import (
	"os"
	"time"
)

// Config はゲートウェイ全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// JWTSecret はトークン発行者と共有する署名鍵。
	// 未設定の場合、認証が必要なエンドポイントはすべて失敗する。
	JWTSecret string
	// DBPath はSQLiteデータベースファイルのパス。
	DBPath string
	// NominatimURL はジオコーディングプロバイダのベースURL。
	NominatimURL string
	// WikipediaURL は百科事典サマリープロバイダのベースURL。
	WikipediaURL string
	// LocationIQURL は位置情報検索プロバイダのベースURL。
	LocationIQURL string
	// LocationIQToken は位置情報検索プロバイダのAPIキー。
	LocationIQToken string
	// AllowedOrigins はCORSで許可するオリジン。
	AllowedOrigins []string
	// UpstreamTimeout は上流プロバイダ呼び出し1回あたりのタイムアウト。
	UpstreamTimeout time.Duration
}

// Load は環境変数からConfigを構築する。
// 未設定の項目にはローカル開発向けのデフォルト値を使用する。
func Load() Config {
	return Config{
		Port:            getEnvOr("PORT", "8080"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		DBPath:          getEnvOr("TABI_DB", "tabi.db"),
		NominatimURL:    getEnvOr("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		WikipediaURL:    getEnvOr("WIKIPEDIA_URL", "https://en.wikipedia.org"),
		LocationIQURL:   getEnvOr("LOCATIONIQ_URL", "https://us1.locationiq.com"),
		LocationIQToken: os.Getenv("LOCATIONIQ_TOKEN"),
		AllowedOrigins:  []string{getEnvOr("FRONTEND_URL", "*")},
		UpstreamTimeout: getDurationOr("UPSTREAM_TIMEOUT", 10*time.Second),
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getDurationOr は環境変数をtime.Durationとして取得する。
// 未設定またはパース不能な場合はデフォルト値を返す。
func getDurationOr(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}

// 旅行ゲートウェイのエントリポイント。
// 目的地検索、コミュニティ掲示板、ユーザー設定のAPIを単一プロセスでホストする。
package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/nao1215/tabi/internal/config"
	"github.com/nao1215/tabi/internal/gateway"
)

func main() {
	// .envファイルを読み込む（存在しない場合はシステムの環境変数を使う）
	if err := godotenv.Load(); err != nil {
		log.Println(".envファイルが見つからないため、システムの環境変数を使用します")
	}

	cfg := config.Load()

	server, err := gateway.NewServer(cfg)
	if err != nil {
		log.Fatalf("ゲートウェイサーバーの初期化に失敗: %v", err)
	}
	defer func() { _ = server.Close() }()

	log.Printf("旅行ゲートウェイを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("ゲートウェイサーバーの起動に失敗: %v", err)
	}
}

package gateway

import (
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nao1215/tabi/internal/config"
	"github.com/nao1215/tabi/internal/destination"
	"github.com/nao1215/tabi/internal/forum"
	"github.com/nao1215/tabi/internal/prefs"
	"github.com/nao1215/tabi/pkg/httpclient"
	"github.com/nao1215/tabi/pkg/identity"
	"github.com/nao1215/tabi/pkg/middleware"
)

// Server は旅行ゲートウェイのHTTPサーバー。
// すべての依存コンポーネントは起動時に明示的に構築して注入する。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// db はSQLiteデータベース接続。
	db *sql.DB
	// forumStore は掲示板の投稿・コメントストア。
	forumStore *forum.Store
	// prefsStore はユーザー設定ドキュメントのストア。
	prefsStore *prefs.Store
	// resolver は目的地解決パイプライン。
	resolver *destination.Resolver
	// locationiq は位置情報検索プロバイダへのクライアント。
	locationiq *httpclient.Client
	// locationIQToken は位置情報検索プロバイダのAPIキー。
	locationIQToken string
	// verifier はBearerトークンの検証器。
	verifier identity.Verifier
	// jwtSecret は開発用トークン発行に使用する署名鍵。
	jwtSecret string
}

// NewServer は新しいゲートウェイサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(cfg config.Config) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := forum.InitSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("掲示板スキーマ初期化に失敗: %w", err)
	}
	if err := prefs.InitSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("設定スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:     router,
		port:       cfg.Port,
		db:         sqlDB,
		forumStore: forum.NewStore(sqlDB),
		prefsStore: prefs.NewStore(sqlDB),
		resolver: destination.NewResolver(
			httpclient.New(cfg.NominatimURL, cfg.UpstreamTimeout),
			httpclient.New(cfg.WikipediaURL, cfg.UpstreamTimeout),
		),
		locationiq:      httpclient.New(cfg.LocationIQURL, cfg.UpstreamTimeout),
		locationIQToken: cfg.LocationIQToken,
		verifier:        identity.NewJWTVerifier(cfg.JWTSecret),
		jwtSecret:       cfg.JWTSecret,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// Close はデータベース接続を閉じる。
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes はAPIルーティングを設定する。
// 読み取り専用の一覧・検索は匿名アクセス、書き込み系と設定・アクティビティは
// Bearerトークン認証ゲートの通過を必須とする。
func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from the backend!")
	})

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "tabi"})
	})

	// 開発用トークン発行
	s.router.POST("/auth/dev-token", s.handleDevToken())

	api := s.router.Group("/api")
	{
		// 目的地検索（匿名）
		api.GET("/search", s.handleSearch())
		api.GET("/location/search", s.handleLocationSearch())

		// 掲示板の読み取り（匿名）
		api.GET("/forum/posts", s.handleListPosts())
		api.GET("/forum/posts/:id/comments", s.handleListComments())
	}

	authed := api.Group("")
	authed.Use(middleware.BearerAuth(s.verifier))
	{
		// 掲示板の書き込み
		authed.POST("/forum/posts", s.handleCreatePost())
		authed.POST("/forum/posts/:id/comments", s.handleCreateComment())
		authed.DELETE("/forum/posts/:id", s.handleDeletePost())

		// ユーザー設定
		authed.GET("/user/preferences", s.handleGetPreferences())
		authed.PUT("/user/preferences", s.handleUpdatePreferences())
		authed.POST("/user/preferences", s.handleUpdatePreferences())

		// 最近のアクティビティ
		authed.GET("/user/activity", s.handleActivity())
	}
}

// handleDevToken は開発用トークンを発行するハンドラを返す。
// 新しいUIDを採番し、それをサブジェクトとするトークンを返す。
// 本番環境ではトークンは外部発行者から取得する。
func (s *Server) handleDevToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.jwtSecret == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "トークン署名鍵が設定されていません"})
			return
		}

		uid := uuid.New().String()
		token, err := identity.Issue(s.jwtSecret, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "トークン生成に失敗しました"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"uid":   uid,
		})
	}
}

package gateway

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/tabi/pkg/middleware"
)

// activityEntry は「最近のアクティビティ」のレスポンス要素。
type activityEntry struct {
	// ID はアクティビティの識別子。
	ID string `json:"id"`
	// Type はアクティビティ種別。
	Type string `json:"type"`
	// Details はアクティビティの内容。
	Details string `json:"details"`
	// Timestamp は発生日時。
	Timestamp string `json:"timestamp"`
}

// handleGetPreferences はユーザー設定の取得を処理するハンドラを返す。
// ドキュメントが存在しない場合は空オブジェクトの200を返す。
func (s *Server) handleGetPreferences() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.GetUID(c)

		prefs, err := s.prefsStore.Get(c.Request.Context(), uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "設定の取得に失敗しました"})
			log.Printf("設定取得エラー: uid=%s, error=%v", uid, err)
			return
		}

		c.JSON(http.StatusOK, prefs)
	}
}

// handleUpdatePreferences はユーザー設定のマージ書き込みを処理するハンドラを返す。
// リクエストボディのトップレベルキーを既存ドキュメントにマージする（後勝ち）。
func (s *Server) handleUpdatePreferences() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.GetUID(c)

		var patch map[string]any
		if err := c.ShouldBindJSON(&patch); err != nil || patch == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストボディはJSONオブジェクトである必要があります"})
			return
		}

		if err := s.prefsStore.Merge(c.Request.Context(), uid, patch); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "設定の保存に失敗しました"})
			log.Printf("設定保存エラー: uid=%s, error=%v", uid, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "設定を更新しました"})
	}
}

// handleActivity は「最近のアクティビティ」の取得を処理するハンドラを返す。
// 将来の機能のためのプレースホルダで、固定のモックデータを返す。
func (s *Server) handleActivity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, []activityEntry{
			{ID: "1", Type: "destination_view", Details: "Paris", Timestamp: "2025-10-22T10:00:00Z"},
			{ID: "2", Type: "preference_update", Details: "Theme changed to dark", Timestamp: "2025-10-22T09:30:00Z"},
		})
	}
}

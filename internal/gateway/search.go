package gateway

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/tabi/internal/destination"
)

// handleSearch は目的地検索を処理するハンドラを返す。認証不要。
// 「該当なし」は空配列の200で返す。クエリ形式違反は400、ジオコーディング
// プロバイダの障害のみ502になる。
func (s *Server) handleSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := strings.TrimSpace(c.Query("q"))

		results, err := s.resolver.Resolve(c.Request.Context(), query)
		if errors.Is(err, destination.ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "検索クエリが不正です。英数字・空白・カンマ・ハイフンのみ、100文字以内で指定してください",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "目的地情報の取得に失敗しました"})
			log.Printf("目的地解決エラー: query=%q, error=%v", query, err)
			return
		}

		c.JSON(http.StatusOK, results)
	}
}

// handleLocationSearch は位置情報検索プロバイダへの素通しを処理するハンドラを返す。
// プロバイダのレスポンスボディとステータスをそのまま中継する。認証不要。
func (s *Server) handleLocationSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		path := "/v1/search.php?key=" + url.QueryEscape(s.locationIQToken) +
			"&q=" + url.QueryEscape(query) + "&format=json"

		body, contentType, status, err := s.locationiq.GetRaw(c.Request.Context(), path)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "位置情報プロバイダとの通信に失敗しました"})
			log.Printf("位置情報検索エラー: %v", err)
			return
		}

		c.Data(status, contentType, body)
	}
}

package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/tabi/pkg/identity"
)

// contextKeyUID はGinコンテキストに検証済みUIDを格納するためのキー。
const contextKeyUID = "uid"

// BearerAuth はAuthorizationヘッダーのBearerトークンを検証するGinミドルウェアを返す。
// 検証に成功した場合、コンテキストに検証済みPrincipalのUIDを設定する。
// 書き込み系のエンドポイントはすべてこのゲートを通過する。読み取り専用の
// 一覧・検索エンドポイントには適用しない。
func BearerAuth(v identity.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := identity.VerifyHeader(c.Request.Context(), v, c.GetHeader("Authorization"))
		if err != nil {
			status, message := gateStatus(err)
			c.AbortWithStatusJSON(status, gin.H{"error": message})
			return
		}

		c.Set(contextKeyUID, p.UID)
		c.Next()
	}
}

// gateStatus は認証ゲートのエラーをHTTPステータスとメッセージに対応付ける。
// ヘッダー不備は401、トークン検証失敗は403、検証サービス未初期化は500を返す。
func gateStatus(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrMissingCredential):
		return http.StatusUnauthorized, "認証トークンが必要です"
	case errors.Is(err, identity.ErrMalformedCredential):
		return http.StatusUnauthorized, "Authorizationヘッダーの形式が不正です"
	case errors.Is(err, identity.ErrInvalidCredential):
		return http.StatusForbidden, "トークンが無効または期限切れです"
	case errors.Is(err, identity.ErrServiceUnavailable):
		return http.StatusInternalServerError, "トークン検証サービスが初期化されていません"
	default:
		return http.StatusInternalServerError, "認証処理に失敗しました"
	}
}

// GetUID はGinコンテキストから検証済みPrincipalのUIDを取得する。
// BearerAuthミドルウェアが事前に適用されている必要がある。
func GetUID(c *gin.Context) string {
	uid, _ := c.Get(contextKeyUID)
	if id, ok := uid.(string); ok {
		return id
	}
	return ""
}

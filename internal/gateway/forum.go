package gateway

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/tabi/internal/forum"
	"github.com/nao1215/tabi/pkg/middleware"
)

// createPostRequest は投稿作成リクエストのJSON構造。
// author_uidはリクエストボディから受け取らず、検証済みPrincipalから設定する。
type createPostRequest struct {
	// Title は投稿タイトル。空は許可しない。
	Title string `json:"title" binding:"required"`
	// Content は投稿本文。空は許可しない。
	Content string `json:"content" binding:"required"`
}

// createCommentRequest はコメント作成リクエストのJSON構造。
type createCommentRequest struct {
	// Content はコメント本文。空は許可しない。
	Content string `json:"content" binding:"required"`
}

// postResponse は投稿のJSONレスポンス構造。
type postResponse struct {
	// ID は投稿の一意識別子。
	ID int64 `json:"id"`
	// Title は投稿タイトル。
	Title string `json:"title"`
	// Content は投稿本文。
	Content string `json:"content"`
	// AuthorUID は投稿を作成したPrincipalのUID。
	AuthorUID string `json:"author_uid"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
}

// commentResponse はコメントのJSONレスポンス構造。
type commentResponse struct {
	// ID はコメントの一意識別子。
	ID int64 `json:"id"`
	// PostID はコメント先の投稿ID。
	PostID int64 `json:"post_id"`
	// Content はコメント本文。
	Content string `json:"content"`
	// AuthorUID はコメントを作成したPrincipalのUID。
	AuthorUID string `json:"author_uid"`
	// CreatedAt は作成日時。
	CreatedAt string `json:"created_at"`
}

// timestampFormat はレスポンス中の日時表現。
const timestampFormat = "2006-01-02T15:04:05Z"

// toPostResponse はストアのレコードをJSONレスポンスに変換する。
func toPostResponse(p forum.Post) postResponse {
	return postResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		AuthorUID: p.AuthorUID,
		CreatedAt: p.CreatedAt.UTC().Format(timestampFormat),
	}
}

// toCommentResponse はストアのレコードをJSONレスポンスに変換する。
func toCommentResponse(c forum.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID,
		PostID:    c.PostID,
		Content:   c.Content,
		AuthorUID: c.AuthorUID,
		CreatedAt: c.CreatedAt.UTC().Format(timestampFormat),
	}
}

// postIDParam はURLパラメータから投稿IDを取り出す。
// 整数でないIDは存在しない投稿と同じ扱いにする。
func postIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// handleListPosts は投稿一覧取得を処理するハンドラを返す。認証不要。
// 投稿は作成日時の降順（新しい順）で返す。
func (s *Server) handleListPosts() gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := s.forumStore.ListPosts(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿一覧の取得に失敗しました"})
			log.Printf("投稿一覧取得エラー: %v", err)
			return
		}

		responses := make([]postResponse, 0, len(posts))
		for _, p := range posts {
			responses = append(responses, toPostResponse(p))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleCreatePost は投稿作成を処理するハンドラを返す。
// author_uidは認証ゲートが解決したPrincipalのUIDから設定する。
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPostRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		created, err := s.forumStore.CreatePost(c.Request.Context(), middleware.GetUID(c), req.Title, req.Content)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の作成に失敗しました"})
			log.Printf("投稿作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toPostResponse(created))
	}
}

// handleListComments は投稿配下のコメント一覧取得を処理するハンドラを返す。認証不要。
// コメントは作成日時の昇順（古い順）で返す。
func (s *Server) handleListComments() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, ok := postIDParam(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}

		comments, err := s.forumStore.ListComments(c.Request.Context(), postID)
		if errors.Is(err, forum.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "コメント一覧の取得に失敗しました"})
			log.Printf("コメント一覧取得エラー: %v", err)
			return
		}

		responses := make([]commentResponse, 0, len(comments))
		for _, cm := range comments {
			responses = append(responses, toCommentResponse(cm))
		}
		c.JSON(http.StatusOK, responses)
	}
}

// handleCreateComment はコメント作成を処理するハンドラを返す。
// 存在しない投稿へのコメントは404になり、レコードを一切作らない。
func (s *Server) handleCreateComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, ok := postIDParam(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}

		var req createCommentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("リクエストが不正です: %v", err)})
			return
		}

		created, err := s.forumStore.CreateComment(c.Request.Context(), middleware.GetUID(c), postID, req.Content)
		if errors.Is(err, forum.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "コメントの作成に失敗しました"})
			log.Printf("コメント作成エラー: %v", err)
			return
		}

		c.JSON(http.StatusCreated, toCommentResponse(created))
	}
}

// handleDeletePost は投稿削除を処理するハンドラを返す。
// 投稿の所有者のみが削除でき、配下の全コメントも同一トランザクションで削除される。
func (s *Server) handleDeletePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, ok := postIDParam(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}

		// 投稿の存在確認と所有者チェック
		p, err := s.forumStore.GetPost(c.Request.Context(), postID)
		if errors.Is(err, forum.ErrPostNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の取得に失敗しました"})
			log.Printf("投稿取得エラー: %v", err)
			return
		}

		if p.AuthorUID != middleware.GetUID(c) {
			c.JSON(http.StatusForbidden, gin.H{"error": "この投稿を削除する権限がありません"})
			return
		}

		if err := s.forumStore.DeletePost(c.Request.Context(), postID); err != nil {
			if errors.Is(err, forum.ErrPostNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "投稿が見つかりません"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "投稿の削除に失敗しました"})
			log.Printf("投稿削除エラー: %v", err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrPostNotFound は指定された投稿が存在しないことを示す。
var ErrPostNotFound = errors.New("forum: 投稿が見つかりません")

// Post はコミュニティ掲示板の投稿。
type Post struct {
	// ID はストアが採番した一意識別子。
	ID int64
	// Title は投稿タイトル。
	Title string
	// Content は投稿本文。
	Content string
	// AuthorUID は投稿を作成した検証済みPrincipalのUID。作成後は不変。
	AuthorUID string
	// CreatedAt はストアが記録した作成日時。
	CreatedAt time.Time
}

// Comment は投稿に対するコメント。
type Comment struct {
	// ID はストアが採番した一意識別子。
	ID int64
	// PostID はコメント先の投稿ID。常に存在する投稿を参照する。
	PostID int64
	// Content はコメント本文。
	Content string
	// AuthorUID はコメントを作成した検証済みPrincipalのUID。作成後は不変。
	AuthorUID string
	// CreatedAt はストアが記録した作成日時。
	CreatedAt time.Time
}

// Store は投稿とコメントの永続化を担当するリレーショナルストア。
// すべての書き込みは単一トランザクションで実行される。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListPosts は全投稿を作成日時の降順（新しい順）で返す。
// 作成日時が同一の場合はIDの降順で順序を確定させる。
func (s *Store) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, author_uid, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("投稿一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	posts := make([]Post, 0)
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorUID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("投稿行の読み取りに失敗: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetPost は指定されたIDの投稿を返す。存在しない場合はErrPostNotFoundを返す。
func (s *Store) GetPost(ctx context.Context, id int64) (Post, error) {
	var p Post
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, author_uid, created_at
		FROM posts
		WHERE id = ?
	`, id).Scan(&p.ID, &p.Title, &p.Content, &p.AuthorUID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrPostNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("投稿の取得に失敗: %w", err)
	}
	return p, nil
}

// CreatePost は新しい投稿を作成し、採番済みIDと作成日時を含む永続化後の
// レコードを返す。author_uidは検証済みPrincipalのUIDからのみ設定される。
func (s *Store) CreatePost(ctx context.Context, authorUID, title, content string) (Post, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO posts (title, content, author_uid)
		VALUES (?, ?, ?)
	`, title, content, authorUID)
	if err != nil {
		return Post{}, fmt.Errorf("投稿の作成に失敗: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Post{}, fmt.Errorf("投稿IDの取得に失敗: %w", err)
	}
	return s.GetPost(ctx, id)
}

// ListComments は指定された投稿のコメントを作成日時の昇順（古い順）で返す。
// 投稿が存在しない場合はErrPostNotFoundを返す。
func (s *Store) ListComments(ctx context.Context, postID int64) ([]Comment, error) {
	if _, err := s.GetPost(ctx, postID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, content, author_uid, created_at
		FROM comments
		WHERE post_id = ?
		ORDER BY created_at ASC, id ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	comments := make([]Comment, 0)
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorUID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("コメント行の読み取りに失敗: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// CreateComment は指定された投稿に新しいコメントを作成する。
// 投稿の存在確認と挿入は同一トランザクションで実行され、存在しない投稿への
// コメントはErrPostNotFoundになりレコードを一切作らない。
func (s *Store) CreateComment(ctx context.Context, authorUID string, postID int64, content string) (Comment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Comment{}, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM posts WHERE id = ?`, postID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return Comment{}, ErrPostNotFound
	}
	if err != nil {
		return Comment{}, fmt.Errorf("投稿の存在確認に失敗: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO comments (post_id, content, author_uid)
		VALUES (?, ?, ?)
	`, postID, content, authorUID)
	if err != nil {
		return Comment{}, fmt.Errorf("コメントの作成に失敗: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return Comment{}, fmt.Errorf("コメントIDの取得に失敗: %w", err)
	}

	var c Comment
	err = tx.QueryRowContext(ctx, `
		SELECT id, post_id, content, author_uid, created_at
		FROM comments
		WHERE id = ?
	`, id).Scan(&c.ID, &c.PostID, &c.Content, &c.AuthorUID, &c.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("作成したコメントの取得に失敗: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Comment{}, fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return c, nil
}

// DeletePost は指定された投稿と配下の全コメントを単一トランザクションで削除する。
// 投稿が存在しない場合はErrPostNotFoundを返し、何も削除しない。
// 所有者の確認は呼び出し元の責務（ハンドラがGetPostで検証する）。
func (s *Store) DeletePost(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, id); err != nil {
		return fmt.Errorf("コメントのカスケード削除に失敗: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("投稿の削除に失敗: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗: %w", err)
	}
	if affected == 0 {
		return ErrPostNotFound
	}

	return tx.Commit()
}

package forum

import (
	"database/sql"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS posts (
    -- 投稿の一意識別子。ストアが採番する単調増加の整数
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    -- 投稿タイトル
    title TEXT NOT NULL,
    -- 投稿本文
    content TEXT NOT NULL,
    -- 投稿を作成した検証済みPrincipalのUID
    author_uid TEXT NOT NULL,
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS comments (
    -- コメントの一意識別子
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    -- コメント先の投稿ID
    post_id INTEGER NOT NULL,
    -- コメント本文
    content TEXT NOT NULL,
    -- コメントを作成した検証済みPrincipalのUID
    author_uid TEXT NOT NULL,
    -- 作成日時
    created_at DATETIME NOT NULL DEFAULT (datetime('now')),
    FOREIGN KEY (post_id) REFERENCES posts(id) ON DELETE CASCADE
);

-- 投稿配下のコメント取得を高速化するインデックス。
CREATE INDEX IF NOT EXISTS idx_comments_post_id
    ON comments(post_id);
`

// InitSchema はSQLiteデータベースにスキーマを適用する。
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}

package prefs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// スキーマ定義。
const schema = `
CREATE TABLE IF NOT EXISTS user_preferences (
    -- 設定ドキュメントの所有者UID
    uid TEXT PRIMARY KEY,
    -- 設定ドキュメント本体（JSONオブジェクト）
    data TEXT NOT NULL,
    -- 最終更新日時
    updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);
`

// InitSchema はSQLiteデータベースにスキーマを適用する。
func InitSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("スキーマの適用に失敗: %w", err)
	}
	return nil
}

// Store はユーザー設定ドキュメントのストア。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Get は指定ユーザーの設定ドキュメントを返す。
// ドキュメントが存在しない場合は空のマップを返す（エラーではない）。
func (s *Store) Get(ctx context.Context, uid string) (map[string]any, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM user_preferences WHERE uid = ?`, uid).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("設定の取得に失敗: %w", err)
	}

	prefs := make(map[string]any)
	if err := json.Unmarshal([]byte(data), &prefs); err != nil {
		return nil, fmt.Errorf("設定ドキュメントのパースに失敗: %w", err)
	}
	return prefs, nil
}

// Merge は指定ユーザーの設定ドキュメントにpatchのトップレベルキーをマージする。
// 読み取りと書き込みは同一トランザクションで実行され、後勝ちで上書きされる。
func (s *Store) Merge(ctx context.Context, uid string, patch map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	merged := make(map[string]any)
	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM user_preferences WHERE uid = ?`, uid).Scan(&data)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// 新規ドキュメント
	case err != nil:
		return fmt.Errorf("既存設定の取得に失敗: %w", err)
	default:
		if err := json.Unmarshal([]byte(data), &merged); err != nil {
			return fmt.Errorf("既存設定のパースに失敗: %w", err)
		}
	}

	for k, v := range patch {
		merged[k] = v
	}

	encoded, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("設定ドキュメントのシリアライズに失敗: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_preferences (uid, data, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(uid) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, uid, string(encoded))
	if err != nil {
		return fmt.Errorf("設定の保存に失敗: %w", err)
	}

	return tx.Commit()
}

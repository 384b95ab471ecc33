// Package gateway は旅行先発見アプリ向けバックエンドゲートウェイのHTTP実装を提供する。
//
// 目的地検索（ジオコーディング＋百科事典サマリー補完）、コミュニティ掲示板、
// ユーザー設定の各エンドポイントをホストする。書き込み系エンドポイントは
// すべてBearerトークン認証ゲートを通過し、検証済みPrincipalのUIDで
// 所有者を記録する。
package gateway

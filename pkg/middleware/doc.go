// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークン認証ゲート、パニックリカバリ、CORS設定など、
// ゲートウェイ全体で共通して使用するミドルウェアを含む。
package middleware

// Package identity はBearerトークンの検証と呼び出し元の同定を提供する。
//
// Authorizationヘッダーの解析、信頼された発行者が署名したトークンの検証、
// 検証済みPrincipal（リクエスト1回分の呼び出し元ID）の生成を担当する。
// 検証はリクエストごとに毎回実行し、セッション状態は一切持たない。
package identity

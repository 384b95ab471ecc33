// Package httpclient は外部プロバイダへのHTTP通信を行うクライアントを提供する。
//
// ジオコーディング、百科事典サマリー、位置情報検索など、ゲートウェイが
// 依存する上流プロバイダの呼び出しパターンを統一する。すべての呼び出しは
// 上限付きタイムアウトの下で実行され、自動リトライは行わない。
package httpclient

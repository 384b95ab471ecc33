// Package destination は自由入力の地名から目的地レコードを解決するリゾルバを提供する。
//
// ジオコーディングプロバイダ（必須）で座標を取得し、百科事典サマリー
// プロバイダ（任意）で説明文を補完する。補完の失敗はリクエスト全体を
// 失敗させず、説明文を省略した結果を返す（グレースフルデグラデーション）。
package destination

// Package prefs はユーザーごとの設定ドキュメントの読み取りとマージ書き込みを提供する。
//
// 設定は1ユーザーにつき1ドキュメント（JSONオブジェクト）で、書き込みは
// トップレベルキーのマージとして扱う。後勝ち（last write wins）以外の
// 不変条件は持たない。
package prefs

// Package forum はコミュニティ掲示板の投稿とコメントの永続化を提供する。
//
// 所有者（author_uid）は作成リクエストの検証済みPrincipalからのみ設定され、
// 以後変更されない。投稿の削除はコメントのカスケード削除を含めて
// 単一トランザクションで実行される。
package forum

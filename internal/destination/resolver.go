package destination

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"regexp"
	"strconv"

	"github.com/nao1215/tabi/pkg/httpclient"
)

var (
	// ErrInvalidQuery は検索クエリが許可された形式でないことを示す。
	ErrInvalidQuery = errors.New("destination: 検索クエリが不正です")
	// ErrUpstreamUnavailable はジオコーディングプロバイダとの通信に失敗したことを示す。
	// 「該当なし」とは区別される障害であり、サーバーエラーとして扱う。
	ErrUpstreamUnavailable = errors.New("destination: 上流プロバイダが利用できません")
)

// maxQueryLength は検索クエリの最大文字数。
const maxQueryLength = 100

// queryPattern は検索クエリの許可リスト。英数字・空白・カンマ・ハイフンのみを
// 許可する。上流プロバイダへ転送しても安全な入力に限定するための防御であり、
// セキュリティ境界ではない。
var queryPattern = regexp.MustCompile(`^[a-zA-Z0-9\s,\-]+$`)

// ValidateQuery は検索クエリが許可された形式かを検証する。
// 空文字列、100文字超、許可リスト外の文字を含む場合はErrInvalidQueryを返す。
func ValidateQuery(query string) error {
	if query == "" || len(query) > maxQueryLength {
		return ErrInvalidQuery
	}
	if !queryPattern.MatchString(query) {
		return ErrInvalidQuery
	}
	return nil
}

// Destination は検索クエリから解決された目的地レコード。
// リクエストごとに生成される一時的な値であり、永続化されない。
type Destination struct {
	// ID は目的地の識別子。クエリ文字列をそのまま使用する。
	ID string `json:"id"`
	// Name は目的地の名前。クエリ文字列をそのまま使用する。
	Name string `json:"name"`
	// Lat は緯度。結果が返るとき必ず設定される。
	Lat float64 `json:"lat"`
	// Lon は経度。結果が返るとき必ず設定される。
	Lon float64 `json:"lon"`
	// Description は百科事典サマリー。補完に成功した場合のみ設定される。
	Description string `json:"description,omitempty"`
}

// Resolver は目的地解決のパイプライン。
// ステージ1のジオコーディングは必須、ステージ2のサマリー補完はベストエフォート。
type Resolver struct {
	// geocoder はジオコーディングプロバイダへのクライアント。
	geocoder *httpclient.Client
	// encyclopedia は百科事典サマリープロバイダへのクライアント。
	encyclopedia *httpclient.Client
}

// NewResolver は新しいResolverを生成する。
func NewResolver(geocoder, encyclopedia *httpclient.Client) *Resolver {
	return &Resolver{
		geocoder:     geocoder,
		encyclopedia: encyclopedia,
	}
}

// geocodeResult はジオコーディングプロバイダのレスポンス要素。
// 緯度経度は文字列で返される。
type geocodeResult struct {
	// Lat は緯度の文字列表現。
	Lat string `json:"lat"`
	// Lon は経度の文字列表現。
	Lon string `json:"lon"`
}

// summaryResponse は百科事典プロバイダのレスポンス。
type summaryResponse struct {
	Query struct {
		Pages map[string]struct {
			// Extract はページ冒頭のプレーンテキスト要約。
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Resolve は検索クエリを目的地レコードへ解決する。
// 「該当なし」は正常な結果であり、空スライスを返す（エラーではない）。
// ジオコーディングの通信障害のみErrUpstreamUnavailableを返す。
// サマリー補完の失敗はログに記録した上で無視し、Descriptionを省略する。
func (r *Resolver) Resolve(ctx context.Context, query string) ([]Destination, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}

	// ステージ1: ジオコーディング（必須）
	var results []geocodeResult
	path := "/search?q=" + url.QueryEscape(query) + "&format=json&limit=1"
	if err := r.geocoder.GetJSON(ctx, path, &results); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	if len(results) == 0 {
		return []Destination{}, nil
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if results[0].Lat == "" || results[0].Lon == "" || latErr != nil || lonErr != nil {
		// 座標が欠けた結果は「該当なし」と同じ扱い
		log.Printf("ジオコーディング結果に座標が含まれない: query=%q", query)
		return []Destination{}, nil
	}

	d := Destination{
		ID:   query,
		Name: query,
		Lat:  lat,
		Lon:  lon,
	}

	// ステージ2: サマリー補完（ベストエフォート）
	if summary, err := r.summarize(ctx, query); err != nil {
		log.Printf("サマリー補完に失敗（結果は座標のみで返す）: query=%q, error=%v", query, err)
	} else if summary != "" {
		d.Description = summary
	}

	return []Destination{d}, nil
}

// summarize は百科事典プロバイダからプレーンテキスト要約を取得する。
// 要約が存在しない場合は空文字列を返す。
func (r *Resolver) summarize(ctx context.Context, title string) (string, error) {
	path := "/w/api.php?action=query&format=json&prop=extracts&exintro&explaintext&redirects=1&titles=" +
		url.QueryEscape(title)

	var resp summaryResponse
	if err := r.encyclopedia.GetJSON(ctx, path, &resp); err != nil {
		return "", err
	}

	for _, page := range resp.Query.Pages {
		if page.Extract != "" {
			return page.Extract, nil
		}
	}
	return "", nil
}

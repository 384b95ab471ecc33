package destination

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/nao1215/tabi/pkg/httpclient"
)

// newTestResolver はモックプロバイダを指すResolverを生成する。
func newTestResolver(t *testing.T, geocode, summary http.HandlerFunc) *Resolver {
	t.Helper()

	geocodeServer := httptest.NewServer(geocode)
	t.Cleanup(geocodeServer.Close)
	summaryServer := httptest.NewServer(summary)
	t.Cleanup(summaryServer.Close)

	return NewResolver(
		httpclient.New(geocodeServer.URL, 0),
		httpclient.New(summaryServer.URL, 0),
	)
}

// geocodeOK は1件の座標を返すモックジオコーダー。
func geocodeOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`[{"lat":"48.8566","lon":"2.3522","display_name":"Paris, France"}]`))
}

// summaryOK は要約を返すモック百科事典プロバイダ。
func summaryOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"query":{"pages":{"12345":{"extract":"Paris is the capital of France."}}}}`))
}

// TestValidateQuery は検索クエリの許可リスト検証のテスト。
func TestValidateQuery(t *testing.T) {
	t.Parallel()

	valid := []string{"Paris", "New York", "Aix-en-Provence", "Paris, France", "Area 51"}
	for _, q := range valid {
		if err := ValidateQuery(q); err != nil {
			t.Errorf("ValidateQuery(%q) = %v, want nil", q, err)
		}
	}

	invalid := []string{
		"",
		"Tokyo; DROP TABLE posts",
		"東京",
		"<script>",
		"a?b",
		strings.Repeat("a", 101),
	}
	for _, q := range invalid {
		if err := ValidateQuery(q); !errors.Is(err, ErrInvalidQuery) {
			t.Errorf("ValidateQuery(%q) = %v, want ErrInvalidQuery", q, err)
		}
	}
}

// TestResolve は目的地解決パイプラインのテスト。
func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("座標と要約を含む1件の結果が返ること", func(t *testing.T) {
		t.Parallel()

		r := newTestResolver(t, geocodeOK, summaryOK)
		got, err := r.Resolve(context.Background(), "Paris")
		if err != nil {
			t.Fatalf("Resolveでエラーが発生: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("結果件数: got %d, want 1", len(got))
		}

		d := got[0]
		if d.ID != "Paris" || d.Name != "Paris" {
			t.Errorf("ID/Name: got %q/%q, want Paris/Paris", d.ID, d.Name)
		}
		if d.Lat != 48.8566 || d.Lon != 2.3522 {
			t.Errorf("座標: got (%v, %v)", d.Lat, d.Lon)
		}
		if d.Description != "Paris is the capital of France." {
			t.Errorf("Description: got %q", d.Description)
		}
	})

	t.Run("要約プロバイダの障害ではDescriptionを省略して成功すること", func(t *testing.T) {
		t.Parallel()

		r := newTestResolver(t, geocodeOK, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "summary down", http.StatusInternalServerError)
		})
		got, err := r.Resolve(context.Background(), "Paris")
		if err != nil {
			t.Fatalf("Resolveでエラーが発生: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("結果件数: got %d, want 1", len(got))
		}
		if got[0].Description != "" {
			t.Errorf("Description: got %q, want 空文字列", got[0].Description)
		}
		if got[0].Lat != 48.8566 || got[0].Lon != 2.3522 {
			t.Errorf("座標は保証されるべき: got (%v, %v)", got[0].Lat, got[0].Lon)
		}
	})

	t.Run("要約にextractがない場合もDescriptionを省略すること", func(t *testing.T) {
		t.Parallel()

		r := newTestResolver(t, geocodeOK, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"query":{"pages":{"-1":{"missing":""}}}}`))
		})
		got, err := r.Resolve(context.Background(), "Paris")
		if err != nil {
			t.Fatalf("Resolveでエラーが発生: %v", err)
		}
		if len(got) != 1 || got[0].Description != "" {
			t.Errorf("結果: got %+v", got)
		}
	})

	t.Run("ジオコーダーが0件の場合は空スライスでエラーなし", func(t *testing.T) {
		t.Parallel()

		summaryCalled := int32(0)
		r := newTestResolver(t,
			func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[]`))
			},
			func(w http.ResponseWriter, _ *http.Request) {
				atomic.AddInt32(&summaryCalled, 1)
				summaryOK(w, nil)
			},
		)
		got, err := r.Resolve(context.Background(), "Nowhereville")
		if err != nil {
			t.Fatalf("Resolveでエラーが発生: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("結果件数: got %d, want 0", len(got))
		}
		if atomic.LoadInt32(&summaryCalled) != 0 {
			t.Error("0件時に要約プロバイダが呼ばれるべきではない")
		}
	})

	t.Run("座標が欠けた結果は空スライスでエラーなし", func(t *testing.T) {
		t.Parallel()

		r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"display_name":"Somewhere"}]`))
		}, summaryOK)
		got, err := r.Resolve(context.Background(), "Somewhere")
		if err != nil {
			t.Fatalf("Resolveでエラーが発生: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("結果件数: got %d, want 0", len(got))
		}
	})

	t.Run("ジオコーダーの障害はErrUpstreamUnavailable", func(t *testing.T) {
		t.Parallel()

		r := newTestResolver(t, func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "geocoder down", http.StatusBadGateway)
		}, summaryOK)
		if _, err := r.Resolve(context.Background(), "Paris"); !errors.Is(err, ErrUpstreamUnavailable) {
			t.Errorf("エラー: got %v, want ErrUpstreamUnavailable", err)
		}
	})

	t.Run("不正なクエリはプロバイダに一切触れずErrInvalidQuery", func(t *testing.T) {
		t.Parallel()

		geocodeCalled := int32(0)
		r := newTestResolver(t,
			func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&geocodeCalled, 1)
				geocodeOK(w, r)
			},
			summaryOK,
		)
		if _, err := r.Resolve(context.Background(), "Paris<script>"); !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("エラー: got %v, want ErrInvalidQuery", err)
		}
		if atomic.LoadInt32(&geocodeCalled) != 0 {
			t.Error("不正クエリでジオコーダーが呼ばれるべきではない")
		}
	})
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// 検証失敗の種別。呼び出し元が「トークンが悪い」のか「こちらが壊れている」のかを
// 区別できるように、HTTPステータスへの対応付けはハンドラ側で行う。
var (
	// ErrMissingCredential はAuthorizationヘッダーが存在しないことを示す。
	ErrMissingCredential = errors.New("identity: Authorizationヘッダーがありません")
	// ErrMalformedCredential はヘッダーが "Bearer <token>" 形式でないことを示す。
	ErrMalformedCredential = errors.New("identity: Authorizationヘッダーの形式が不正です")
	// ErrInvalidCredential はトークンの署名・有効期限・発行者の検証に失敗したことを示す。
	ErrInvalidCredential = errors.New("identity: トークンが無効または期限切れです")
	// ErrServiceUnavailable は検証サービスが初期化されていないことを示す。
	ErrServiceUnavailable = errors.New("identity: トークン検証サービスが初期化されていません")
)

// Principal は検証済みの呼び出し元を表す。リクエスト1回分だけ生きる値であり、
// 永続化されることはない。
type Principal struct {
	// UID は発行者が払い出した安定したサブジェクト識別子。
	UID string
}

// Verifier はBearerトークンを検証してPrincipalへ解決する。
// 実装は信頼された外部発行者に検証を委譲する。
type Verifier interface {
	Verify(ctx context.Context, token string) (Principal, error)
}

// TokenFromHeader はAuthorizationヘッダーからBearerトークンを取り出す。
// ヘッダーが空ならErrMissingCredential、"Bearer "接頭辞がない・トークンが
// 空の場合はErrMalformedCredentialを返す。
func TokenFromHeader(header string) (string, error) {
	if header == "" {
		return "", ErrMissingCredential
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return "", ErrMalformedCredential
	}
	return token, nil
}

// VerifyHeader はAuthorizationヘッダーの解析とトークン検証をまとめて行う。
// すべての書き込み系ハンドラはこのゲートを通過してからPrincipalを得る。
func VerifyHeader(ctx context.Context, v Verifier, header string) (Principal, error) {
	if v == nil {
		return Principal{}, ErrServiceUnavailable
	}
	token, err := TokenFromHeader(header)
	if err != nil {
		return Principal{}, err
	}
	return v.Verify(ctx, token)
}

// claims は発行者が署名するトークンのクレーム。
type claims struct {
	jwt.RegisteredClaims
}

// tokenIssuer はトークンのiss値。発行と検証の双方で使用する。
const tokenIssuer = "tabi-issuer"

// JWTVerifier は共有秘密鍵でHS256署名を検証するVerifier。
// 秘密鍵が未設定のまま生成された場合、すべての検証はErrServiceUnavailableになる。
type JWTVerifier struct {
	// secret は発行者と共有する署名鍵。
	secret string
}

// NewJWTVerifier は新しいJWTVerifierを生成する。
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify はトークンの署名・有効期限・発行者を検証し、サブジェクトをUIDとして返す。
func (v *JWTVerifier) Verify(_ context.Context, token string) (Principal, error) {
	if v.secret == "" {
		return Principal{}, ErrServiceUnavailable
	}

	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(_ *jwt.Token) (any, error) {
		return []byte(v.secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
	)
	if err != nil || !parsed.Valid {
		return Principal{}, ErrInvalidCredential
	}
	if c.Subject == "" {
		return Principal{}, ErrInvalidCredential
	}
	return Principal{UID: c.Subject}, nil
}

// Issue は指定したUIDに対するトークンを発行する。
// 開発用トークン発行エンドポイントとテストから呼び出される。
func Issue(secret, uid string) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("トークンの署名に失敗: %w", err)
	}
	return signed, nil
}

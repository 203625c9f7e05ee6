// Package users はメールアドレスをキーとしたユーザー認証情報の永続化を提供します。
package users

import (
	"context"
	"errors"
)

// ErrAlreadyExists は同じメールアドレスのレコードが既に存在する場合に返されます。
var ErrAlreadyExists = errors.New("users: record already exists")

// Record は保存されるユーザー情報です。PasswordHash には平文を入れません。
type Record struct {
	Email        string `json:"email" dynamodbav:"email"`
	Name         string `json:"name" dynamodbav:"name"`
	PasswordHash string `json:"password" dynamodbav:"password"`
}

// Store は認証情報ストアのインターフェースです。
//
// Get はレコードが存在しない場合 (nil, nil) を返します。
// Create は存在しない場合のみ書き込み、既存なら ErrAlreadyExists を返します。
type Store interface {
	Get(ctx context.Context, email string) (*Record, error)
	Create(ctx context.Context, record *Record) error
}

// Package account はユーザー登録・サインイン・サインアウトのワークフローを提供します。
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yourusername/user-portal/internal/users"
)

// bcrypt が扱える入力の上限
const maxPasswordBytes = 72

// Service は認証ワークフローを組み立てます。
type Service struct {
	store  users.Store
	hasher Hasher
}

// NewService は Service を作成します。
func NewService(store users.Store, hasher Hasher) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher is nil")
	}
	return &Service{store: store, hasher: hasher}, nil
}

// Signup は入力を検証し、未登録のメールアドレスであればハッシュ化したパスワードと共に保存します。
// セッションは作成しません。
func (s *Service) Signup(ctx context.Context, name, email, password string) error {
	if isBlank(name) || isBlank(email) || password == "" {
		return validationError(msgSignupFieldsRequired)
	}
	if len(password) > maxPasswordBytes {
		return validationError(msgPasswordTooLong)
	}

	existing, err := s.store.Get(ctx, email)
	if err != nil {
		return serverError(msgSignupServerError, fmt.Errorf("lookup user: %w", err))
	}
	if existing != nil {
		return &Error{Kind: KindConflict, Message: msgEmailTaken}
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return serverError(msgSignupServerError, fmt.Errorf("hash password: %w", err))
	}

	// Get との間に別リクエストが登録した場合も Create が条件付きなので上書きされない
	err = s.store.Create(ctx, &users.Record{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if errors.Is(err, users.ErrAlreadyExists) {
		return &Error{Kind: KindConflict, Message: msgEmailTaken}
	}
	if err != nil {
		return serverError(msgSignupServerError, fmt.Errorf("create user: %w", err))
	}
	return nil
}

// Signin は認証情報を検証し、成功した場合はセッションにユーザー情報を保存します。
// 未登録とパスワード不一致は同じエラーを返します。
func (s *Service) Signin(ctx context.Context, session Session, email, password string) error {
	if isBlank(email) || password == "" {
		return validationError(msgSigninFieldsRequired)
	}

	record, err := s.store.Get(ctx, email)
	if err != nil {
		return serverError(msgSigninServerError, fmt.Errorf("lookup user: %w", err))
	}
	if record == nil || len(password) > maxPasswordBytes {
		return invalidCredentials()
	}

	ok, err := s.hasher.Verify(password, record.PasswordHash)
	if err != nil {
		return serverError(msgSigninServerError, fmt.Errorf("verify password: %w", err))
	}
	if !ok {
		return invalidCredentials()
	}

	if err := session.Login(SessionUser{Email: record.Email, Name: record.Name}); err != nil {
		return serverError(msgSigninServerError, fmt.Errorf("save session: %w", err))
	}
	return nil
}

// Signout はセッションを破棄します。破棄が完了してから戻ります。
func (s *Service) Signout(ctx context.Context, session Session) error {
	if err := session.Destroy(); err != nil {
		return serverError(msgSignoutServerError, fmt.Errorf("destroy session: %w", err))
	}
	return nil
}

func invalidCredentials() *Error {
	return &Error{Kind: KindAuth, Message: msgInvalidCredentials}
}

// isBlank は name と email の判定に使います。パスワードは空白のみでも有効な値として扱います。
func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}

package account

// SessionUser はセッションに保存するユーザー情報です（パスワードハッシュは含めない）。
type SessionUser struct {
	Email string
	Name  string
}

// Session はリクエストに紐づくサーバーサイドセッションの操作です。
type Session interface {
	// User はログイン中のユーザーを返します。
	User() (SessionUser, bool)
	// Login はユーザー情報を保存し、永続化が終わるまで戻りません。
	Login(user SessionUser) error
	// Destroy はセッションを破棄します。セッションが無い場合もエラーにしません。
	Destroy() error
}

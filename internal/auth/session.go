package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"

	"github.com/yourusername/user-portal/internal/account"
)

const (
	SessionCookieName = "up_session"
	sessionKeyEmail   = "user_email"
	sessionKeyName    = "user_name"
)

// SessionOptions はセッションCookieの属性を返します。
// maxAge が 0 の場合はブラウザセッションCookieになります。
func SessionOptions(secure bool, maxAge int) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ginSession は gin-contrib/sessions のセッションを account.Session として扱います。
// opts は発行時と同じ Cookie 属性で失効させるために保持します。
type ginSession struct {
	s    sessions.Session
	opts sessions.Options
}

func newSession(s sessions.Session, opts sessions.Options) account.Session {
	return ginSession{s: s, opts: opts}
}

func (g ginSession) User() (account.SessionUser, bool) {
	email, ok := g.s.Get(sessionKeyEmail).(string)
	if !ok || email == "" {
		return account.SessionUser{}, false
	}
	name, _ := g.s.Get(sessionKeyName).(string)
	return account.SessionUser{Email: email, Name: name}, true
}

// Login は既存の値を破棄してからユーザー情報を保存します。
// gin-contrib/sessions はセッションIDの再発行APIを持たないため、IDは引き継がれます。
func (g ginSession) Login(user account.SessionUser) error {
	g.s.Clear()
	g.s.Set(sessionKeyEmail, user.Email)
	g.s.Set(sessionKeyName, user.Name)
	return g.s.Save()
}

// Destroy は値を消去し、Cookie を失効させた状態で保存します。
func (g ginSession) Destroy() error {
	g.s.Clear()
	expired := g.opts
	expired.MaxAge = -1
	g.s.Options(expired)
	return g.s.Save()
}

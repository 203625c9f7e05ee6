// Package auth はサインアップ・サインイン画面とセッションによるアクセス制御を提供します。
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/user-portal/internal/account"
)

// ContextUserKey は、ハンドラー間でログイン済みユーザーを共有するためのキーです。
const ContextUserKey = "auth.user"

const (
	homePath   = "/"
	signinPath = "/signin"
)

// Workflow は認証ワークフローのインターフェースです。account.Service が実装します。
type Workflow interface {
	Signup(ctx context.Context, name, email, password string) error
	Signin(ctx context.Context, session account.Session, email, password string) error
	Signout(ctx context.Context, session account.Session) error
}

// Manager は画面表示と認証処理のハンドラーをまとめた構造体です。
type Manager struct {
	workflow Workflow
	cookie   sessions.Options
	logger   *log.Logger
}

// NewManager は認証マネージャーを作成します。
// cookie はセッションストアに設定したものと同じ属性を渡してください。
func NewManager(workflow Workflow, cookie sessions.Options, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		workflow: workflow,
		cookie:   cookie,
		logger:   logger,
	}
}

type signupRequest struct {
	Name     string `form:"name" json:"name"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type signinRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Home は GET / のハンドラーです。RequireLogin の後に登録してください。
func (m *Manager) Home(c *gin.Context) {
	user, ok := c.Get(ContextUserKey)
	if !ok {
		c.Redirect(http.StatusFound, signinPath)
		return
	}
	c.HTML(http.StatusOK, indexTemplate, gin.H{"user": user})
}

// SignupPage は GET /signup のハンドラーです。
func (m *Manager) SignupPage(c *gin.Context) {
	c.HTML(http.StatusOK, registerTemplate, gin.H{})
}

// SigninPage は GET /signin のハンドラーです。
func (m *Manager) SigninPage(c *gin.Context) {
	c.HTML(http.StatusOK, registerTemplate, gin.H{})
}

// Signup は POST /signup のハンドラーです。成功時はサインイン画面へリダイレクトします。
// フォームと JSON のどちらのボディも受け付けます。
func (m *Manager) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBind(&req); err != nil {
		m.respondWithError(c, "signup", invalidBody(err))
		return
	}

	err := m.workflow.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		m.respondWithError(c, "signup", err)
		return
	}
	c.Redirect(http.StatusFound, signinPath)
}

// Signin は POST /signin のハンドラーです。成功時はセッションを発行してホームへリダイレクトします。
func (m *Manager) Signin(c *gin.Context) {
	var req signinRequest
	if err := c.ShouldBind(&req); err != nil {
		m.respondWithError(c, "signin", invalidBody(err))
		return
	}

	session := newSession(sessions.Default(c), m.cookie)
	err := m.workflow.Signin(c.Request.Context(), session, req.Email, req.Password)
	if err != nil {
		m.respondWithError(c, "signin", err)
		return
	}
	c.Redirect(http.StatusFound, homePath)
}

// Signout は POST /signout のハンドラーです。セッションの破棄が完了してからリダイレクトします。
func (m *Manager) Signout(c *gin.Context) {
	session := newSession(sessions.Default(c), m.cookie)
	if err := m.workflow.Signout(c.Request.Context(), session); err != nil {
		m.respondWithError(c, "signout", err)
		return
	}
	c.Redirect(http.StatusFound, signinPath)
}

// RequireLogin はセッションを検証するミドルウェアを返します。
// 未ログインの場合はサインイン画面へリダイレクトします。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := newSession(sessions.Default(c), m.cookie).User()
		if !ok {
			c.Redirect(http.StatusFound, signinPath)
			c.Abort()
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func invalidBody(err error) *account.Error {
	return &account.Error{Kind: account.KindValidation, Message: "Invalid request body.", Err: err}
}

func (m *Manager) respondWithError(c *gin.Context, op string, err error) {
	var wfErr *account.Error
	if !errors.As(err, &wfErr) {
		wfErr = &account.Error{Kind: account.KindServer, Message: "Server error.", Err: err}
	}

	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch wfErr.Kind {
	case account.KindValidation:
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case account.KindConflict:
		status, code = http.StatusConflict, "EMAIL_TAKEN"
	case account.KindAuth:
		status, code = http.StatusUnauthorized, "INVALID_CREDENTIALS"
	}

	// 内部エラーの詳細はログにのみ出力する
	if status == http.StatusInternalServerError {
		m.logger.Printf("%s error request_id=%s: %v", op, c.GetString(ContextRequestIDKey), err)
	}

	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(status, gin.H{
			"code":    code,
			"message": wfErr.Message,
		})
	default:
		c.HTML(status, registerTemplate, gin.H{"error": wfErr.Message})
	}
}

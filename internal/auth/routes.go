package auth

import "github.com/gin-gonic/gin"

// Register は画面と認証のルートを登録します。
func (m *Manager) Register(r gin.IRouter) {
	r.GET("/", m.RequireLogin(), m.Home)
	r.GET("/signup", m.SignupPage)
	r.GET("/signin", m.SigninPage)
	r.POST("/signup", m.Signup)
	r.POST("/signin", m.Signin)
	r.POST("/signout", m.Signout)
}

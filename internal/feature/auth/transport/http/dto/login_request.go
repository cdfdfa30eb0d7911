package dto

// LoginReq は/auth/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRes is returned on successful login.
type LoginRes struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

package types

// RegisterRequest 注册请求体.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse 用户对外视图.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TokenResponse 登录成功返回的令牌.
type TokenResponse struct {
	Token string `json:"token"`
}

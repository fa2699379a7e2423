package types

// StatusResponse 依赖健康状态.
type StatusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// StatsResponse 记录数统计.
type StatsResponse struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// ErrorResponse 统一错误响应.
type ErrorResponse struct {
	Error string `json:"error"`
}

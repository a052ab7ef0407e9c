package response

import "fmt"

// AppError 处理器错误，Status 为响应状态码，Message 为返回给调用方的本地化消息
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%d %s: %v", e.Status, e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ServerSide 是否为服务端错误（5xx）
func (e *AppError) ServerSide() bool {
	return e.Status >= 500
}

// NewAppError 构造处理器错误
func NewAppError(status int, message string, err error) *AppError {
	return &AppError{Status: status, Message: message, Err: err}
}

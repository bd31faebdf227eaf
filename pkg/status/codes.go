package status

// StatusCode API 响应信封中的业务状态码
// 0 表示成功，1xxx 为错误，HTTP 层统一返回 200

type StatusCode int

const (
	// CodeOK 成功
	CodeOK StatusCode = 0

	// ErrCodeInvalidParam 请求参数错误，场景校验失败也归入此类
	ErrCodeInvalidParam StatusCode = 1001
	// ErrCodeInternal 流程意外失败
	ErrCodeInternal StatusCode = 1002
	// ErrCodeUnavailable 功能未启用或依赖不可用
	ErrCodeUnavailable StatusCode = 1003
	// ErrCodeNotFound 资源不存在
	ErrCodeNotFound StatusCode = 1004
	// ErrCodeTimeout 超出调用方的处理时间预算
	ErrCodeTimeout StatusCode = 1005
)

var codeNames = map[StatusCode]string{
	CodeOK:              "OK",
	ErrCodeInvalidParam: "INVALID_PARAM",
	ErrCodeInternal:     "INTERNAL_ERROR",
	ErrCodeUnavailable:  "UNAVAILABLE",
	ErrCodeNotFound:     "NOT_FOUND",
	ErrCodeTimeout:      "TIMEOUT",
}

// String 将状态码转换为字符串标识
func (c StatusCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// ForErrorType 将模拟指标中的 errorType 映射为状态码，未知类型按内部错误处理
func ForErrorType(errorType string) StatusCode {
	switch errorType {
	case "validation":
		return ErrCodeInvalidParam
	case "timeout":
		return ErrCodeTimeout
	default:
		return ErrCodeInternal
	}
}

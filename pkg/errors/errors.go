package errors

import (
	"fmt"
	"runtime"
	"strings"
)

// Lifecycle error codes
const (
	CodeConstructFailed    = 1001 // 构造函数返回错误或 panic
	CodeTornDown           = 1002 // 持有者已经执行过析构
	CodeForgedToken        = 1003 // 非法 Token
	CodeLifecycleViolation = 1004 // New 调用时槽位已被占用
	CodeReleased           = 1005 // 句柄已释放
	CodeNilConstructor     = 1006
)

// Sentinels, compare with Is or GetCode.
var (
	ErrTornDown           = WithCode(CodeTornDown, "singleton: holder already torn down")
	ErrForgedToken        = WithCode(CodeForgedToken, "singleton: token was not minted by its base")
	ErrLifecycleViolation = WithCode(CodeLifecycleViolation, "singleton: instance already exists")
	ErrReleased           = WithCode(CodeReleased, "singleton: handle already released")
	ErrNilConstructor     = WithCode(CodeNilConstructor, "singleton: nil constructor")
)

// Error represents a singleton lifecycle error with stack trace
type Error struct {
	Code    int        `json:"code"`
	Message string     `json:"message"`
	Err     error      `json:"-"` // 原始错误，不序列化
	Stack   string     `json:"stack,omitempty"`
	Context []KeyValue `json:"context,omitempty"`
}

// KeyValue represents a key-value pair for context
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		return e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	for _, kv := range e.Context {
		msg += " " + kv.Key + "=" + kv.Value
	}
	return msg
}

// Unwrap implements the errors.Wrapper interface
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when both errors carry the same non-zero code, which
// lets the sentinels above work with the standard errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return e.Code != 0 && e.Code == t.Code
}

// WithCode creates a new error with code
func WithCode(code int, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Stack:   captureStack(),
	}
}

// WithCodef creates a new error with code and formatted message
func WithCodef(code int, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(),
	}
}

// Wrapf wraps an error with formatted message
func Wrapf(err error, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    GetCode(err),
		Message: fmt.Sprintf(format, args...),
		Err:     err,
		Stack:   captureStack(),
	}
}

// WrapCode wraps err under the given code.
func WrapCode(err error, code int, message string) *Error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
		Stack:   captureStack(),
	}
}

// ConstructFailed 包装构造失败，name 为单例名
func ConstructFailed(name string, err error) *Error {
	return WrapCode(err, CodeConstructFailed, "singleton: construct failed").WithContext("name", name)
}

// TornDown 返回带名称的 ErrTornDown
func TornDown(name string) *Error {
	return ErrTornDown.WithContext("name", name)
}

// New creates a new error
func New(message string) *Error {
	return &Error{
		Message: message,
		Stack:   captureStack(),
	}
}

// WithContext adds context to an error
func (e *Error) WithContext(key, value string) *Error {
	if e == nil {
		return nil
	}

	// 创建新的错误实例以避免修改原始错误
	newErr := &Error{
		Code:    e.Code,
		Message: e.Message,
		Err:     e.Err,
		Stack:   captureStack(),
		Context: make([]KeyValue, len(e.Context), len(e.Context)+1),
	}
	copy(newErr.Context, e.Context)
	newErr.Context = append(newErr.Context, KeyValue{Key: key, Value: value})

	return newErr
}

// captureStack captures the current stack trace
func captureStack() string {
	buf := make([]byte, 1024)
	n := runtime.Stack(buf, false)
	stack := string(buf[:n])

	// 移除顶部几行（captureStack 和构造函数本身）
	lines := strings.Split(stack, "\n")
	if len(lines) > 6 {
		stack = strings.Join(lines[6:], "\n")
	}

	return strings.TrimSpace(stack)
}

// GetCode returns the error code of the first *Error in the chain
func GetCode(err error) int {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Code != 0 {
				return e.Code
			}
			err = e.Err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0
		}
		err = u.Unwrap()
	}
	return 0
}

// Format implements fmt.Formatter
func (e *Error) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			fmt.Fprintf(s, "%s", e.Error())
			if e.Stack != "" {
				fmt.Fprintf(s, "\n%s", e.Stack)
			}
			return
		}
		fallthrough
	case 's':
		fmt.Fprintf(s, "%s", e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

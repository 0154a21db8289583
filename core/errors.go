package core

import "errors"

// DomainError 是领域层的统一错误类型。
//
// 错误分三类：
//   - NOT_FOUND：未知用户/物品、无评分历史、元数据缺失。可恢复，调用方映射为空结果
//   - CONFIG：产物文件缺失、映射表损坏。启动期致命错误
//   - UNAVAILABLE：缓存/数据库读写失败。记录日志后降级为重新计算
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "CONFIG"）
	Message string // 错误消息
	Module  string // 模块名称（如 "codec", "catalog", "cache"）
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is 让 errors.Is 支持按类别匹配：target 中为空的字段视为通配。
// 例如 errors.Is(err, &DomainError{Code: ErrorCodeNotFound}) 匹配任意模块的 NOT_FOUND。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code &&
		(t.Module == "" || e.Module == t.Module) &&
		(t.Message == "" || e.Message == t.Message)
}

// GetDomainError 沿错误链查找 DomainError，找不到返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// 错误代码常量
const (
	ErrorCodeNotFound     = "NOT_FOUND"     // 资源不存在
	ErrorCodeConfig       = "CONFIG"        // 配置/产物错误
	ErrorCodeUnavailable  = "UNAVAILABLE"   // 存储不可用
	ErrorCodeInvalidInput = "INVALID_INPUT" // 输入无效
)

// 模块名称常量
const (
	ModuleCodec    = "codec"
	ModuleCatalog  = "catalog"
	ModuleRatings  = "ratings"
	ModuleArtifact = "artifact"
	ModuleStore    = "store"
	ModuleCache    = "cache"
	ModuleService  = "service"
	ModuleConfig   = "config"
)

var (
	// ErrUserNotFound 用户不在训练期的编码表中
	ErrUserNotFound = NewDomainError(ModuleCodec, ErrorCodeNotFound, "codec: user not found")

	// ErrItemNotFound 物品不在训练期的编码表中
	ErrItemNotFound = NewDomainError(ModuleCodec, ErrorCodeNotFound, "codec: item not found")

	// ErrNoRatings 用户没有任何评分记录
	ErrNoRatings = NewDomainError(ModuleRatings, ErrorCodeNotFound, "ratings: user has no rating history")

	// ErrMetadataNotFound 物品元数据缺失
	ErrMetadataNotFound = NewDomainError(ModuleCatalog, ErrorCodeNotFound, "catalog: anime not found")

	// ErrInvalidTopN 请求级 top_n 必须为正数
	ErrInvalidTopN = NewDomainError(ModuleService, ErrorCodeInvalidInput, "service: top_n must be positive")

	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")
)

// NewConfigError 创建配置错误（启动期致命）
func NewConfigError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeConfig, message)
}

// NewUnavailableError 创建存储不可用错误
func NewUnavailableError(module, message string) *DomainError {
	return NewDomainError(module, ErrorCodeUnavailable, message)
}

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	return hasCode(err, ErrorCodeNotFound)
}

// IsConfig 检查错误是否为 CONFIG
func IsConfig(err error) bool {
	return hasCode(err, ErrorCodeConfig)
}

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool {
	return hasCode(err, ErrorCodeUnavailable)
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	return hasCode(err, ErrorCodeInvalidInput)
}

// IsStoreNotFound 检查错误是否为 store 模块的 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	return domainErr != nil && domainErr.Module == ModuleStore && domainErr.Code == ErrorCodeNotFound
}

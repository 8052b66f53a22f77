package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	TooLarge            = 413
	InternalServerError = 500
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrFileTooLarge     = errors.New("文件超过大小限制")
	ErrFileNotSupported = errors.New("不支持的文件类型")
	ErrFileNotExist     = errors.New("文件不存在")
	ErrNotJoined        = errors.New("尚未加入房间")
	ErrSenderMismatch   = errors.New("发送者与当前身份不一致")
	ErrIdentityMismatch = errors.New("加入身份与凭据不一致")
	ErrUnknownEvent     = errors.New("未知事件")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:     BadRequest,
	ErrFileTooLarge:     TooLarge,
	ErrFileNotSupported: BadRequest,
	ErrFileNotExist:     NotFound,
	ErrNotJoined:        BadRequest,
	ErrSenderMismatch:   Forbidden,
	ErrIdentityMismatch: Forbidden,
	ErrUnknownEvent:     BadRequest,
	UnauthorizedError:   Unauthorized,
	UnExpectedError:     InternalServerError,
}

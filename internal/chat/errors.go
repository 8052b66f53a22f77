package chat

import "errors"

// 身份
var (
	ErrIdentityMissing   = errors.New("登录会话不存在")
	ErrIdentityAmbiguous = errors.New("无法识别登录身份")
)

// 目录与历史
var (
	ErrDirectoryUnavailable = errors.New("联系人目录暂不可用")
	ErrHistoryUnavailable   = errors.New("历史消息加载失败")
)

// 通道
var (
	ErrChannelConnectFailed = errors.New("聊天通道连接失败")
	ErrChannelSendFailed    = errors.New("消息发送失败")
	ErrChannelLost          = errors.New("聊天通道已断开")
)

// 附件
var (
	ErrUploadTooLarge        = errors.New("附件超过 10MB 限制")
	ErrUploadTransportFailed = errors.New("附件上传失败")
)

// 撰写
var (
	ErrComposeIncomplete   = errors.New("消息内容为空")
	ErrComposeNoReceiver   = errors.New("未选择接收人")
	ErrComposeNotConnected = errors.New("聊天通道未连接")
)

var ErrViewNotMounted = errors.New("聊天视图未初始化")

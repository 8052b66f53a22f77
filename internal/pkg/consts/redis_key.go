package consts

const (
	// ChatRoomKey 房间频道前缀，后接接收者数字 id
	ChatRoomKey = "chat:room:"
	// ChatRoomPattern 中继订阅的频道模式
	ChatRoomPattern = ChatRoomKey + "*"
	// UploadPendingKey 尚未被消息引用的附件
	UploadPendingKey = "chat:upload:pending"
)

const (
	UploadCleanupLock = "lock:chat:upload:cleanup"
)

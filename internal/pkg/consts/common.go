package consts

// 线上角色字符串，客户端与中继共用
const (
	RoleMember = "member"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// ChatRoles 合法的发送方角色
var ChatRoles = []string{RoleMember, RoleStaff, RoleAdmin}

// 房间广播方式
const (
	BrokerRedis = "redis"
	BrokerLocal = "local"
)

// UploadObjectPrefix 附件对象前缀，后接 YYYY/MM/DD/
const UploadObjectPrefix = "chat/"

package chat

// IsEcho 编号在两个池之间会重复，必须同时比较 id 与 role
func IsEcho(incoming Message, me SessionIdentity) bool {
	return incoming.SenderID == me.ID && incoming.SenderRole == me.Role
}

// ShouldDeliver 非自身回声且接收者是我时才进入可见列表
func ShouldDeliver(incoming Message, me SessionIdentity) bool {
	return !IsEcho(incoming, me) && incoming.ReceiverID == me.ID
}

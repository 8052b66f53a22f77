package dto

// UploadResp POST /chat/upload 返回
type UploadResp struct {
	FileURL string `json:"fileUrl"`
}

// PendingUploadMeta 尚未被消息引用的附件
type PendingUploadMeta struct {
	ObjectKey string `json:"object_key"`
	MimeType  string `json:"mime_type"`
	Size      int64  `json:"size"`
	CreatedAt int64  `json:"created_at"`
}

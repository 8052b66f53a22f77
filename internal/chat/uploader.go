package chat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"GymChat/internal/api/dto"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

// MaxAttachmentSize 附件大小上限 10 MiB
const MaxAttachmentSize int64 = 10 << 20

const uploadPath = "/chat/upload"

// Attachment 待上传的文件
type Attachment struct {
	Name    string
	Size    int64
	Content io.Reader
}

// OpenAttachment 打开本地文件作为附件，调用方负责关闭
func OpenAttachment(path string) (*Attachment, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return &Attachment{Name: filepath.Base(path), Size: info.Size(), Content: f}, f, nil
}

// Uploader 带外上传附件，返回可嵌入消息的 URL
type Uploader struct {
	rest    *resty.Client
	maxSize int64
}

func NewUploader(rest *resty.Client) *Uploader {
	return &Uploader{rest: rest, maxSize: MaxAttachmentSize}
}

// Upload 超限文件在本地直接拒绝，不发起请求
func (u *Uploader) Upload(ctx context.Context, file *Attachment) (string, error) {
	if file == nil || file.Content == nil {
		return "", fmt.Errorf("%w: no file", ErrUploadTransportFailed)
	}
	if file.Size > u.maxSize {
		return "", fmt.Errorf("%w: %s is %d bytes", ErrUploadTooLarge, file.Name, file.Size)
	}

	resp, err := u.rest.R().
		SetContext(ctx).
		SetFileReader("file", file.Name, file.Content).
		Post(uploadPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadTransportFailed, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: http %d", ErrUploadTransportFailed, resp.StatusCode())
	}

	var out dto.UploadResp
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadTransportFailed, err)
	}
	if out.FileURL == "" {
		return "", fmt.Errorf("%w: empty fileUrl", ErrUploadTransportFailed)
	}
	return out.FileURL, nil
}

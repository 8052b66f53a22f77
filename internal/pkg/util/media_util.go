package util

import (
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// GetSafeContentType 按文件头识别类型，读完后回到开头
func GetSafeContentType(r io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("识别文件类型失败: %w", err)
	}
	if _, err = r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mtype.String(), nil
}

// ObjectName 生成按日期分目录的对象名，优先保留原扩展名
func ObjectName(prefix, filename, contentType string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		if m := mimetype.Lookup(contentType); m != nil {
			ext = m.Extension()
		}
	}
	return prefix + now.Format("2006/01/02/") + uuid.NewString() + ext
}

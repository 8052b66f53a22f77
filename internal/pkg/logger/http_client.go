package logger

import (
	"bytes"
	"io"
	log "log/slog"
	"net/http"
	"strings"
	"time"
)

const bodyLogLimit = 1000

// HTTPTransport 记录客户端发往中继的 REST 请求
type HTTPTransport struct {
	Transport http.RoundTripper
}

func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Transport: http.DefaultTransport}
}

func (t *HTTPTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.Transport.RoundTrip(req)
	elapsed := time.Since(start)

	fields := []any{
		log.String("method", req.Method),
		log.String("url", req.URL.String()),
		log.Duration("latency", elapsed),
	}

	if err != nil {
		log.ErrorContext(req.Context(), "HTTP_CLIENT_ERROR", append(fields, log.Any("err", err))...)
		return nil, err
	}

	fields = append(fields, log.Int("status", resp.StatusCode))
	// multipart 体积大，只记录 JSON 响应
	if resp.StatusCode >= 400 && resp.Body != nil &&
		strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		resBody, _ := io.ReadAll(resp.Body)
		resp.Body = io.NopCloser(bytes.NewBuffer(resBody))
		resStr := string(resBody)
		if len(resStr) > bodyLogLimit {
			resStr = resStr[:bodyLogLimit] + "...[truncated]"
		}
		fields = append(fields, log.String("res_body", resStr))
	}

	switch {
	case resp.StatusCode >= 400:
		log.WarnContext(req.Context(), "HTTP_CLIENT_FAILED", fields...)
	case elapsed > 500*time.Millisecond:
		log.WarnContext(req.Context(), "HTTP_CLIENT_SLOW", fields...)
	default:
		log.DebugContext(req.Context(), "HTTP_CLIENT", fields...)
	}

	return resp, nil
}

package chat

import (
	"fmt"
	"time"

	"GymChat/internal/pkg/logger"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
)

const codeOK = 200

// envelope 中继 REST 接口的统一返回
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewRESTClient 构造访问中继的 HTTP 客户端
func NewRESTClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetTransport(logger.NewHTTPTransport()).
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal).
		SetHeader("Accept", "application/json")
}

// getEnvelope 发起 GET 并把 data 解到 out，code 非 200 视为失败
func getEnvelope(req *resty.Request, path string, out any) error {
	resp, err := req.Get(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("GET %s: http %d", resp.Request.URL, resp.StatusCode())
	}

	var env envelope
	if err = json.Unmarshal(resp.Body(), &env); err != nil {
		return fmt.Errorf("GET %s: decode envelope: %w", resp.Request.URL, err)
	}
	if env.Code != codeOK {
		return fmt.Errorf("GET %s: code %d %s", resp.Request.URL, env.Code, env.Message)
	}
	if len(env.Data) == 0 {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

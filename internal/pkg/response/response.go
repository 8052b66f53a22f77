package response

import (
	"errors"
	log "log/slog"
	"net/http"

	"GymChat/internal/api/dto"
	"GymChat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Success 目录与历史接口的 {code:200,data} 信封
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.Response{Code: http.StatusOK, Message: "success", Data: data})
}

// Error 信封内携带业务码，HTTP 状态固定 200
func Error(c *gin.Context, err error) {
	code, msg := resolveAndLog(c, err)
	c.JSON(http.StatusOK, dto.Response{Code: code, Message: msg})
}

// ErrorStatus HTTP 状态码与业务码一致，供上传与 ws 升级这类客户端按状态码判断的接口
func ErrorStatus(c *gin.Context, err error) {
	code, msg := resolveAndLog(c, err)
	c.AbortWithStatusJSON(code, dto.Response{Code: code, Message: msg})
}

func resolveAndLog(c *gin.Context, err error) (int, string) {
	code, msg := Resolve(err)
	if code >= service.InternalServerError {
		log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
	}
	return code, msg
}

// Resolve 把错误映射为业务码，ws 错误事件也走这里；5xx 不向客户端暴露细节
func Resolve(err error) (int, string) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return service.BadRequest, service.ErrParamInvalid.Error()
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return service.BadRequest, service.ErrParamInvalid.Error()
	}

	for target, code := range service.ErrorMap {
		if !errors.Is(err, target) {
			continue
		}
		if code >= service.InternalServerError {
			return code, target.Error()
		}
		// 包装过的 4xx 错误带字段细节，原样返回给客户端
		return code, err.Error()
	}
	return service.InternalServerError, service.UnExpectedError.Error()
}

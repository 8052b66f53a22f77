package util

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"GymChat/internal/pkg/consts"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// 报错时使用 json 字段名，与 WS 载荷一致
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("chatrole", func(fl validator.FieldLevel) bool {
		return slices.Contains(consts.ChatRoles, fl.Field().String())
	})
	return v
}

// ValidateDTO 只返回第一条失败的字段
func ValidateDTO(dto any) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		first := vErrs[0]
		return fmt.Errorf("字段 [%s] 校验失败，规则 [%s]", first.Field(), first.Tag())
	}
	return err
}

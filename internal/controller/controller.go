package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"rural_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 取出鉴权中间件写入的身份，缺失时直接返回 401
func currentUser(ctx *gin.Context) (*util.Claims, bool) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return nil, false
	}
	return user, true
}

// bindJSON 绑定失败时直接写 400
func bindJSON(ctx *gin.Context, obj interface{}) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		util.BadRequest(ctx, bindMessage(err))
		return false
	}
	return true
}

// bindMessage 把 JSON 类型错误改写成可读的字段提示，其余错误原样返回
func bindMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "class_id" {
			return "class_id must be a string; use class_number for grade level"
		}
		return fmt.Sprintf("%s must be %s", typeErr.Field, jsonKind(typeErr.Type))
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return "request body must be valid JSON"
	}
	return err.Error()
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Ptr:
		return jsonKind(t.Elem())
	}
	return "an object"
}

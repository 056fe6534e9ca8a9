// Package validator 包装 go-playground/validator，错误信息使用 json 字段名并按语言翻译。
package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Validator 结构体校验
type Validator interface {
	Struct(s any) error
	StructCtx(ctx context.Context, s any) error
}

// Validate 默认英文校验器
var Validate Validator = New()

// Engine 带翻译的校验器
type Engine struct {
	v     *validator.Validate
	trans ut.Translator
}

type Option func(*settings)

type settings struct {
	tag  string
	lang string
}

// WithTagName 校验标签名，默认 validate
func WithTagName(name string) Option {
	return func(s *settings) {
		s.tag = name
	}
}

// WithLanguage en 或 zh
func WithLanguage(lang string) Option {
	return func(s *settings) {
		s.lang = lang
	}
}

// New 除内置规则外注册 notblank，拒绝只含空白的字符串
func New(opts ...Option) *Engine {
	s := settings{tag: "validate", lang: "en"}
	for _, opt := range opts {
		opt(&s)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName(s.tag)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	uni := ut.New(en.New(), en.New(), zh.New())
	trans, _ := uni.GetTranslator(s.lang)
	blank := "{0} must not be blank"
	if s.lang == "zh" {
		_ = zh_translations.RegisterDefaultTranslations(v, trans)
		blank = "{0}不能为空白"
	} else {
		_ = en_translations.RegisterDefaultTranslations(v, trans)
	}
	_ = v.RegisterTranslation("notblank", trans,
		func(t ut.Translator) error { return t.Add("notblank", blank, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T("notblank", fe.Field())
			return msg
		},
	)

	return &Engine{v: v, trans: trans}
}

func (e *Engine) Struct(s any) error {
	return e.StructCtx(context.Background(), s)
}

// StructCtx 校验失败时返回 Errors
func (e *Engine) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errors.New("validator: nil target")
	}
	err := e.v.StructCtx(ctx, s)
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}

	out := make(Errors, len(ves))
	for i, fe := range ves {
		out[i] = FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: fe.Translate(e.trans)}
	}
	return out
}

// Package tag 按 `default:"..."` 标签为结构体零值字段赋默认值。
package tag

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTargetMustBePointer = errors.New("tag: target must be a pointer")
	ErrTargetIsNil         = errors.New("tag: target is nil")
	ErrUnsupportedType     = errors.New("tag: unsupported type")
	ErrMaxDepthExceeded    = errors.New("tag: max recursion depth exceeded")
)

// FieldError Path 形如 Pool.MaxIdleConns 或 Brokers[0]
type FieldError struct {
	Path  string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tag: %s = %q: %v", e.Path, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ApplyDefaults target 必须是非 nil 结构体指针
//
//	type Config struct {
//	    Addr string        `default:"127.0.0.1:3000"`
//	    TTL  time.Duration `default:"1h"`
//	}
//
// 嵌套结构体、非 nil 结构体指针与非空切片中的结构体元素会被递归处理。
// 切片字段的默认值以逗号分隔。
func ApplyDefaults(target any) error {
	rv := reflect.ValueOf(target)
	switch {
	case rv.Kind() != reflect.Pointer:
		return ErrTargetMustBePointer
	case rv.IsNil():
		return ErrTargetIsNil
	case rv.Elem().Kind() != reflect.Struct:
		return ErrUnsupportedType
	}
	return walker{}.structure(rv.Elem(), "")
}

type walker struct {
	depth int
}

const maxDepth = 32

func (w walker) deeper() (walker, error) {
	if w.depth+1 >= maxDepth {
		return w, ErrMaxDepthExceeded
	}
	return walker{depth: w.depth + 1}, nil
}

func (w walker) structure(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		if err := w.field(fv, f.Tag.Get("default"), path); err != nil {
			return err
		}
	}
	return nil
}

func (w walker) field(v reflect.Value, def, path string) error {
	if handled, err := w.descend(v, path); handled {
		return err
	}
	if def == "" || !v.IsZero() {
		return nil
	}
	if err := set(v, def); err != nil {
		return &FieldError{Path: path, Value: def, Err: err}
	}
	return nil
}

// descend 处理需要递归的字段，handled 为 false 时按普通字段赋值
func (w walker) descend(v reflect.Value, path string) (handled bool, err error) {
	switch v.Kind() {
	case reflect.Struct:
		if v.CanAddr() {
			if _, text := v.Addr().Interface().(encoding.TextUnmarshaler); text {
				return false, nil
			}
		}
	case reflect.Pointer:
		if v.Type().Elem().Kind() != reflect.Struct {
			return false, nil
		}
		if v.IsNil() {
			return true, nil
		}
		v = v.Elem()
	case reflect.Slice:
		if v.Len() == 0 {
			return false, nil
		}
		next, err := w.deeper()
		if err != nil {
			return true, err
		}
		for i := range v.Len() {
			if e := v.Index(i); e.Kind() == reflect.Struct {
				if err := next.structure(e, fmt.Sprintf("%s[%d]", path, i)); err != nil {
					return true, err
				}
			}
		}
		return true, nil
	default:
		return false, nil
	}

	next, err := w.deeper()
	if err != nil {
		return true, err
	}
	return true, next.structure(v, path)
}

var durationType = reflect.TypeFor[time.Duration]()

func set(v reflect.Value, s string) error {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(s))
		}
	}
	s = strings.TrimSpace(s)

	if v.Type() == durationType {
		d, err := time.ParseDuration(s)
		if err == nil {
			v.SetInt(int64(d))
		}
		return err
	}

	bits := 0
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		bits = v.Type().Bits()
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, bits)
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, bits)
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, bits)
		if err != nil {
			return err
		}
		v.SetFloat(f)
	case reflect.Slice:
		parts := strings.Split(s, ",")
		out := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := set(out.Index(i), p); err != nil {
				return err
			}
		}
		v.Set(out)
	default:
		return ErrUnsupportedType
	}
	return nil
}

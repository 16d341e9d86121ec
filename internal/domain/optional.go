package domain

import "encoding/json"

// Optional 三态可选字段：没传 / 传了 null / 传了值。
// PUT 的局部更新要能区分「不改」和「清空」，普通指针丢掉第一态。
type Optional[T any] struct {
	Set   bool // 字段出现在请求体里
	Null  bool // 显式 null
	Value T
}

// UnmarshalJSON 只要被调用就说明字段出现过
func (o *Optional[T]) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Null = true
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Present 传了非 null 的值
func (o Optional[T]) Present() bool { return o.Set && !o.Null }

package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 以 "1s"、"250ms" 形式读写的时长。
// yaml.v3 不会把整数解码为 time.Duration，因此保存时统一写成字符串
type Duration time.Duration

// Std 转为 time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String 实现 fmt.Stringer
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalYAML 实现 yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML 实现 yaml.Unmarshaler，接受时长字符串或毫秒整数
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("第 %d 行: 时长必须是标量", value.Line)
	}

	var ms int64
	if value.ShortTag() == "!!int" {
		if err := value.Decode(&ms); err != nil {
			return err
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("第 %d 行: 无效的时长 %q: %w", value.Line, value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

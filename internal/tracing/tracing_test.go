package tracing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPII(t *testing.T) {
	assert.Equal(t, "z******n", MaskPII("zhangsan"), "应保留首尾各一个字符")
	assert.Equal(t, "**", MaskPII("a"), "过短的值应完全掩码")
	assert.Equal(t, "**", MaskPII(""), "空值应完全掩码")
	assert.Equal(t, "张*三", MaskPII("张某三"), "多字节字符按rune掩码")
}

func TestTruncateString(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := TruncateString(long, 0)
	assert.Equal(t, DefaultMaxLength+3, len(got), "非法maxLength应回落到默认值")
	assert.True(t, strings.HasSuffix(got, "..."), "截断后应带省略号")

	assert.Equal(t, "short", TruncateString("short", 10), "未超长的值应原样返回")
}

func TestSafeAttributeValue(t *testing.T) {
	masked := SafeAttributeValue("user.email", "someone@example.com", DefaultMaxLength)
	assert.NotContains(t, masked, "someone", "敏感属性应被掩码")
	assert.Equal(t, "s", masked[:1])

	plain := SafeAttributeValue("search.query", "golang developer", DefaultMaxLength)
	assert.Equal(t, "golang developer", plain, "普通属性不做掩码")

	long := strings.Repeat("q", 500)
	truncated := SafeAttributeValue("search.query", long, DefaultMaxLength)
	assert.Equal(t, DefaultMaxLength+3, len(truncated), "普通属性超长时截断")
}

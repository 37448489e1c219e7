package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUnknownProfile 测试兜底档案的六字段完整性
func TestUnknownProfile(t *testing.T) {
	profile := UnknownProfile()

	require.NotNil(t, profile)
	assert.Equal(t, "Unknown", profile.Name, "兜底姓名应为Unknown")
	assert.NotNil(t, profile.Skills, "技能列表不应为nil")
	assert.NotNil(t, profile.Experience, "经历列表不应为nil")
	assert.NotNil(t, profile.Education, "教育列表不应为nil")
	assert.NotNil(t, profile.Projects, "项目列表不应为nil")
	assert.Empty(t, profile.Skills, "兜底档案的技能列表应为空")
}

// TestNormalizeFillsMissingFields 测试规范化补齐所有空缺字段
func TestNormalizeFillsMissingFields(t *testing.T) {
	profile := &ResumeProfile{}
	profile.Normalize()

	assert.Equal(t, "Unknown", profile.Name, "空姓名应补为Unknown")
	assert.NotNil(t, profile.Skills, "nil技能列表应补为空数组")
	assert.NotNil(t, profile.Experience, "nil经历列表应补为空数组")
	assert.NotNil(t, profile.Education, "nil教育列表应补为空数组")
	assert.NotNil(t, profile.Projects, "nil项目列表应补为空数组")
}

// TestNormalizePreservesExistingValues 测试规范化不覆盖已有数据
func TestNormalizePreservesExistingValues(t *testing.T) {
	profile := &ResumeProfile{
		Name:   "张三",
		Skills: []string{"Go"},
	}
	profile.Normalize()

	assert.Equal(t, "张三", profile.Name, "已有姓名不应被覆盖")
	assert.Equal(t, []string{"Go"}, profile.Skills, "已有技能不应被覆盖")
}

// TestApplicationStatusValid 测试投递状态的合法值集合
func TestApplicationStatusValid(t *testing.T) {
	valid := []ApplicationStatus{StatusApplied, StatusInterviewed, StatusRejected, StatusAccepted}
	for _, s := range valid {
		assert.True(t, s.Valid(), "状态 %s 应为合法值", s)
	}

	assert.False(t, ApplicationStatus("pending").Valid(), "未定义的状态应为非法值")
	assert.False(t, ApplicationStatus("").Valid(), "空状态应为非法值")
}

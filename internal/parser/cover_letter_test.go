package parser

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-agent-go/internal/types"
)

func testJob() *types.JobPosting {
	return &types.JobPosting{
		ID:          1,
		Title:       "Senior Python Developer",
		Company:     "TechCorp",
		Location:    "San Francisco, CA",
		Description: "Looking for an experienced Python developer.",
		Platform:    types.PlatformLinkedIn,
	}
}

func testProfile() *types.ResumeProfile {
	profile := &types.ResumeProfile{
		Name:    "张三",
		Contact: types.Contact{Email: "zhangsan@example.com", Phone: "13800138000"},
		Skills:  []string{"Python", "Django", "PostgreSQL", "Docker"},
		Experience: []types.Experience{
			{Company: "某科技公司", Role: "后端工程师", Duration: "2021-2023", Description: "负责订单系统的设计与开发"},
		},
	}
	profile.Normalize()
	return profile
}

// TestGenerateCoverLetterWithLLMBody 测试正文由LLM生成时的完整信件结构
func TestGenerateCoverLetterWithLLMBody(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: "I am excited to apply my Python expertise to this role."}
	fixedNow := func() time.Time {
		return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	}
	generator := NewCoverLetterGenerator(mockModel, WithClock(fixedNow))

	letter := generator.Generate(context.Background(), testJob(), testProfile())

	require.NotEmpty(t, letter, "信件不应为空")
	assert.Contains(t, letter, "张三", "抬头应包含候选人姓名")
	assert.Contains(t, letter, "zhangsan@example.com", "抬头应包含邮箱")
	assert.Contains(t, letter, "March 15, 2026", "抬头应包含固定日期")
	assert.Contains(t, letter, "Hiring Manager\nTechCorp", "抬头应包含雇主信息")
	assert.Contains(t, letter, "Dear Hiring Manager,", "应包含称呼")
	assert.Contains(t, letter, "I am excited to apply my Python expertise", "正文应来自LLM响应")
	assert.Contains(t, letter, "Sincerely,\n张三", "落款应包含候选人姓名")
	assert.Equal(t, 1, mockModel.CallCount, "正文应只调用一次LLM，不重试")
}

// TestGenerateCoverLetterFallback 测试生成服务失败时的模板兜底。
// 兜底信件仍需包含职位、公司和候选人姓名，且非空。
func TestGenerateCoverLetterFallback(t *testing.T) {
	mockModel := &MockLLMModel{Err: assert.AnError}
	generator := NewCoverLetterGenerator(mockModel)

	job := testJob()
	profile := testProfile()
	letter := generator.Generate(context.Background(), job, profile)

	require.NotEmpty(t, letter, "兜底信件不应为空")
	assert.Contains(t, letter, job.Title, "兜底正文应包含职位名称")
	assert.Contains(t, letter, job.Company, "兜底正文应包含公司名称")
	assert.Contains(t, letter, profile.Name, "信件应包含候选人姓名")
	assert.Contains(t, letter, "Python, Django, PostgreSQL", "兜底正文应列出前三项技能")
	assert.Equal(t, 1, mockModel.CallCount, "失败后不应重试")
}

// TestGenerateCoverLetterEmptyBody 测试LLM返回空白正文时同样走模板兜底
func TestGenerateCoverLetterEmptyBody(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: "   \n  "}
	generator := NewCoverLetterGenerator(mockModel)

	letter := generator.Generate(context.Background(), testJob(), testProfile())

	require.NotEmpty(t, letter, "信件不应为空")
	assert.Contains(t, letter, "I am writing to express my strong interest", "空白正文应替换为模板正文")
}

// TestGenerateCoverLetterFallbackLongChineseDescription 测试超长中文经历描述的截断不会切坏多字节字符
func TestGenerateCoverLetterFallbackLongChineseDescription(t *testing.T) {
	mockModel := &MockLLMModel{Err: assert.AnError}
	generator := NewCoverLetterGenerator(mockModel)

	profile := testProfile()
	profile.Experience[0].Description = strings.Repeat("负责高并发订单系统的架构设计与性能优化，", 20)

	letter := generator.Generate(context.Background(), testJob(), profile)

	require.NotEmpty(t, letter, "信件不应为空")
	assert.True(t, utf8.ValidString(letter), "截断后的信件必须是合法UTF-8")
	assert.Contains(t, letter, "...", "超长描述应带省略号")
}

// TestGenerateCoverLetterSparseProfile 测试技能和经历为空的档案不会导致异常
func TestGenerateCoverLetterSparseProfile(t *testing.T) {
	mockModel := &MockLLMModel{Err: assert.AnError}
	generator := NewCoverLetterGenerator(mockModel)

	profile := types.UnknownProfile()
	letter := generator.Generate(context.Background(), testJob(), profile)

	require.NotEmpty(t, letter, "稀疏档案的信件不应为空")
	assert.Contains(t, letter, "Unknown", "信件应包含兜底姓名")
	assert.Contains(t, letter, "TechCorp", "信件应包含公司名称")
}

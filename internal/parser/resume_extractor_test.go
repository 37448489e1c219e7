package parser

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试用LLM模型模拟器
type MockLLMModel struct {
	// 模拟响应
	mockResponse string
	// 记录绑定的工具 (可选，用于测试)
	boundTools []*schema.ToolInfo
	// 用于测试的错误
	Err error
	// 用于测试的调用次数
	CallCount int
}

// Generate 实现model.ChatModel接口
func (m *MockLLMModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return &schema.Message{
		Role:    "assistant",
		Content: m.mockResponse,
	}, nil
}

// Stream 实现model.ChatModel接口
func (m *MockLLMModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	// 测试中不需要流式响应
	return nil, nil
}

// BindTools 实现model.ChatModel接口
func (m *MockLLMModel) BindTools(tools []*schema.ToolInfo) error {
	m.boundTools = tools
	log.Printf("[MockLLMModel] BindTools called with %d tools.", len(tools))
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口
func (m *MockLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := m.BindTools(tools); err != nil {
		return nil, err
	}
	return m, nil
}

// TestExtractProfileStrictJSON 测试模型返回纯JSON时的解析
func TestExtractProfileStrictJSON(t *testing.T) {
	mockResponse := `{
		"name": "张三",
		"contact": {"email": "zhangsan@example.com", "phone": "13800138000"},
		"skills": ["Python", "Go", "MySQL"],
		"experience": [{"company": "某科技公司", "role": "后端工程师", "duration": "2021-2023", "description": "负责订单系统开发"}],
		"education": [{"degree": "本科", "institution": "某大学", "year": "2021"}],
		"projects": [{"name": "推荐系统", "description": "基于协同过滤", "technologies": ["Python", "Redis"]}]
	}`

	mockModel := &MockLLMModel{mockResponse: mockResponse}
	extractor := NewLLMResumeExtractor(mockModel)

	profile, err := extractor.ExtractProfile(context.Background(), "张三的简历文本")
	require.NoError(t, err, "抽取不应返回错误")
	require.NotNil(t, profile, "档案不应为nil")

	assert.Equal(t, "张三", profile.Name, "姓名应正确提取")
	assert.Equal(t, "zhangsan@example.com", profile.Contact.Email, "邮箱应正确提取")
	assert.Equal(t, []string{"Python", "Go", "MySQL"}, profile.Skills, "技能列表应正确提取")
	require.Len(t, profile.Experience, 1, "应有一条工作经历")
	assert.Equal(t, "后端工程师", profile.Experience[0].Role, "职位应正确提取")
}

// TestExtractProfileFencedJSON 测试JSON嵌在Markdown代码块和说明文字中的宽松解析
func TestExtractProfileFencedJSON(t *testing.T) {
	mockResponse := "好的，以下是解析结果：\n```json\n" +
		`{"name": "李四", "contact": {"email": "lisi@example.com", "phone": ""}, "skills": ["Java"], "experience": [], "education": [], "projects": []}` +
		"\n```\n希望对你有帮助。"

	mockModel := &MockLLMModel{mockResponse: mockResponse}
	extractor := NewLLMResumeExtractor(mockModel)

	profile, err := extractor.ExtractProfile(context.Background(), "李四的简历文本")
	require.NoError(t, err, "抽取不应返回错误")

	assert.Equal(t, "李四", profile.Name, "应从代码块中解析出姓名")
	assert.Equal(t, []string{"Java"}, profile.Skills, "应从代码块中解析出技能")
}

// TestExtractProfileMalformedResponse 测试模型输出完全不可解析时的Unknown兜底。
// 兜底档案的六个顶层字段必须全部存在且非nil。
func TestExtractProfileMalformedResponse(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: "抱歉，我无法解析这份简历。"}
	extractor := NewLLMResumeExtractor(mockModel)

	profile, err := extractor.ExtractProfile(context.Background(), "一段简历文本")
	require.NoError(t, err, "输出质量问题不应作为错误返回")
	require.NotNil(t, profile, "兜底档案不应为nil")

	assert.Equal(t, "Unknown", profile.Name, "兜底档案姓名应为Unknown")
	assert.NotNil(t, profile.Skills, "技能列表不应为nil")
	assert.NotNil(t, profile.Experience, "经历列表不应为nil")
	assert.NotNil(t, profile.Education, "教育列表不应为nil")
	assert.NotNil(t, profile.Projects, "项目列表不应为nil")
	assert.Empty(t, profile.Skills, "兜底档案技能列表应为空")
}

// TestExtractProfilePartialFields 测试字段缺失的JSON经过规范化后结构完整
func TestExtractProfilePartialFields(t *testing.T) {
	mockModel := &MockLLMModel{mockResponse: `{"name": "王五", "skills": ["C++"]}`}
	extractor := NewLLMResumeExtractor(mockModel)

	profile, err := extractor.ExtractProfile(context.Background(), "王五的简历文本")
	require.NoError(t, err, "抽取不应返回错误")

	assert.Equal(t, "王五", profile.Name, "姓名应正确提取")
	assert.NotNil(t, profile.Experience, "缺失的经历列表应补为空数组")
	assert.NotNil(t, profile.Education, "缺失的教育列表应补为空数组")
	assert.NotNil(t, profile.Projects, "缺失的项目列表应补为空数组")
}

// TestExtractProfileServiceError 测试生成服务不可达时返回服务错误
func TestExtractProfileServiceError(t *testing.T) {
	mockModel := &MockLLMModel{Err: assert.AnError}
	extractor := NewLLMResumeExtractor(mockModel)

	profile, err := extractor.ExtractProfile(context.Background(), "一段简历文本")
	require.Error(t, err, "服务失败应返回错误")
	assert.ErrorIs(t, err, ErrGenerationService, "错误应标记为生成服务失败")
	assert.Nil(t, profile, "服务失败时不应返回档案")
	assert.Equal(t, 1, mockModel.CallCount, "服务失败只应调用一次")
}

// TestExtractProfileTransientErrorSingleCall 测试网络类瞬时错误也只调用一次，不做内部重试
func TestExtractProfileTransientErrorSingleCall(t *testing.T) {
	mockModel := &MockLLMModel{Err: errors.New("read tcp: connection reset by peer")}
	extractor := NewLLMResumeExtractor(mockModel)

	start := time.Now()
	profile, err := extractor.ExtractProfile(context.Background(), "一段简历文本")
	elapsed := time.Since(start)

	require.Error(t, err, "瞬时失败应直接返回错误")
	assert.ErrorIs(t, err, ErrGenerationService, "错误应标记为生成服务失败")
	assert.Nil(t, profile, "失败时不应返回档案")
	assert.Equal(t, 1, mockModel.CallCount, "瞬时失败不应触发内部重试")
	assert.Less(t, elapsed, time.Second, "失败路径不应有退避等待")
}

// TestExtractJSON 测试JSON片段提取的两种路径
func TestExtractJSON(t *testing.T) {
	fenced := "前缀\n```json\n{\"a\": 1}\n```\n后缀"
	assert.Equal(t, `{"a": 1}`, extractJSON(fenced), "应提取代码块中的JSON")

	bare := `说明文字 {"b": {"c": 2}} 结尾`
	assert.Equal(t, `{"b": {"c": 2}}`, extractJSON(bare), "应按花括号配对提取JSON")

	assert.Empty(t, extractJSON("没有任何JSON"), "无JSON时应返回空串")
}

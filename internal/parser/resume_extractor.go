package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"job-agent-go/internal/types"
)

// LLMResumeExtractor 使用LLM将简历纯文本解析为结构化档案。
//
// 失败策略：只有生成服务本身不可达（网络/后端错误）才向调用方返回错误；
// 模型输出质量问题（非JSON、JSON嵌在说明文字里、字段缺失）全部在内部兜底，
// 最坏情况下返回规范的"Unknown"档案。调用方拿到的档案永远是完整的六字段结构。
type LLMResumeExtractor struct {
	llmModel model.ToolCallingChatModel

	// 提示词模板
	promptTemplate string

	logger *log.Logger
}

// ResumeExtractorOption 简历抽取器配置选项
type ResumeExtractorOption func(*LLMResumeExtractor)

// WithResumeExtractorLogger 配置自定义日志记录器
func WithResumeExtractorLogger(logger *log.Logger) ResumeExtractorOption {
	return func(e *LLMResumeExtractor) {
		e.logger = logger
	}
}

// WithPromptTemplate 设置自定义提示词模板
func WithPromptTemplate(template string) ResumeExtractorOption {
	return func(e *LLMResumeExtractor) {
		e.promptTemplate = template
	}
}

// NewLLMResumeExtractor 创建简历抽取器
func NewLLMResumeExtractor(llmModel model.ToolCallingChatModel, options ...ResumeExtractorOption) *LLMResumeExtractor {
	extractor := &LLMResumeExtractor{
		llmModel: llmModel,
		logger:   log.New(io.Discard, "", 0),
	}

	for _, opt := range options {
		opt(extractor)
	}

	if extractor.promptTemplate == "" {
		extractor.generatePromptTemplate()
	}

	return extractor
}

// 生成提示词模板
func (e *LLMResumeExtractor) generatePromptTemplate() {
	e.promptTemplate = `你是一个专业的简历解析专家，负责从简历纯文本中提取结构化信息。

核心任务：
1. 提取候选人姓名和联系方式（邮箱、电话）。
2. 提取技能列表：包括编程语言、框架、工具等。
3. 提取工作/实习经历：公司、职位、时间段、工作内容描述。
4. 提取教育经历：学位、学校、年份。
5. 提取项目经历：项目名称、描述、使用的技术。
6. 严格按照指定的JSON格式输出结果。

重要指令：
- 信息缺失处理：若某信息项缺失，对应字符串字段设为空字符串，列表字段设为空数组。请勿编造信息。
- 列表完整性：即使某类经历只有一条，也必须输出为数组。
- 时间段格式：保留简历原文的写法，不要改写。

JSON输出格式规范：
{
  "name": "string",
  "contact": {
    "email": "string",
    "phone": "string"
  },
  "skills": ["string"],
  "experience": [
    {
      "company": "string",
      "role": "string",
      "duration": "string",
      "description": "string"
    }
  ],
  "education": [
    {
      "degree": "string",
      "institution": "string",
      "year": "string"
    }
  ],
  "projects": [
    {
      "name": "string",
      "description": "string",
      "technologies": ["string"]
    }
  ]
}

请严格按照上述JSON格式规范输出，不要包含任何解释性文字或Markdown标记。确保JSON的完整性和可解析性。
接下来，你将收到一份简历文本，请对其进行分析。`
}

// ExtractProfile 将简历文本解析为结构化档案。
// 两级解析：先严格解析整个响应，失败后从响应中抠出JSON片段再解析；
// 两级都失败则返回"Unknown"档案。返回的档案保证六字段完整。
func (e *LLMResumeExtractor) ExtractProfile(ctx context.Context, resumeText string) (*types.ResumeProfile, error) {
	response, err := e.callLLM(ctx, e.promptTemplate, resumeText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationService, err)
	}

	profile := e.parseProfile(response)
	profile.Normalize()
	return profile, nil
}

// parseProfile 从LLM响应文本解析档案，永不失败
func (e *LLMResumeExtractor) parseProfile(response string) *types.ResumeProfile {
	// 第一级：整个响应就是JSON
	var profile types.ResumeProfile
	if err := json.Unmarshal([]byte(response), &profile); err == nil {
		return &profile
	}

	// 第二级：响应混有说明文字或代码块标记，抠出JSON片段
	jsonStr := extractJSON(response)
	if jsonStr != "" {
		profile = types.ResumeProfile{}
		if err := json.Unmarshal([]byte(jsonStr), &profile); err == nil {
			return &profile
		}
	}

	e.logger.Printf("无法从LLM响应中解析出档案，使用Unknown兜底。原始响应: %.200s", response)
	return types.UnknownProfile()
}

// callLLM 调用LLM处理提示词。
// 单次调用不重试，瞬时失败也直接向上返回，重试策略留给调用方决定。
func (e *LLMResumeExtractor) callLLM(ctx context.Context, systemContent string, userContent string) (string, error) {
	messages := []*einoschema.Message{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: userContent},
	}

	e.logger.Printf("[LLMResumeExtractor] User Prompt: %.50s...", userContent)

	callCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	response, err := e.llmModel.Generate(callCtx, messages)
	if err != nil {
		e.logger.Printf("[LLMResumeExtractor] LLM call error: %v", err)
		return "", err
	}

	e.logger.Printf("[LLMResumeExtractor] LLM Response: %.50s", response.Content)
	return response.Content, nil
}

// extractJSON 从文本中提取JSON片段
func extractJSON(text string) string {
	// 尝试使用正则表达式提取 ```json ... ``` 代码块中的内容
	re := regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	matches := re.FindStringSubmatch(text)
	if len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 如果正则没有匹配到，尝试寻找 JSON 的开始和结束位置作为回退
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	// 查找匹配的}
	level := 0
	for i := start; i < len(text); i++ {
		if text[i] == '{' {
			level++
		} else if text[i] == '}' {
			level--
			if level == 0 {
				return strings.TrimSpace(text[start : i+1])
			}
		}
	}
	return ""
}

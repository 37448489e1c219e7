package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"

	"job-agent-go/internal/types"
)

// CoverLetterGenerator 针对单个职位和候选人档案生成求职信。
//
// 信件结构 = 确定性抬头 + 正文 + 固定落款。抬头和落款不依赖生成服务；
// 正文优先由LLM生成，服务失败或返回空时退化为模板拼装的段落。
// 该组件永远返回非空文本，不向调用方传播生成失败。
type CoverLetterGenerator struct {
	llmModel model.ToolCallingChatModel

	// 正文最大词数约束，写入提示词
	maxBodyWords int

	// 当前日期函数，测试中可替换
	now func() time.Time

	logger *log.Logger
}

// CoverLetterOption 求职信生成器配置选项
type CoverLetterOption func(*CoverLetterGenerator)

// WithCoverLetterLogger 配置自定义日志记录器
func WithCoverLetterLogger(logger *log.Logger) CoverLetterOption {
	return func(g *CoverLetterGenerator) {
		g.logger = logger
	}
}

// WithMaxBodyWords 设置正文词数上限
func WithMaxBodyWords(n int) CoverLetterOption {
	return func(g *CoverLetterGenerator) {
		g.maxBodyWords = n
	}
}

// WithClock 替换日期来源，用于测试
func WithClock(now func() time.Time) CoverLetterOption {
	return func(g *CoverLetterGenerator) {
		g.now = now
	}
}

// NewCoverLetterGenerator 创建求职信生成器
func NewCoverLetterGenerator(llmModel model.ToolCallingChatModel, options ...CoverLetterOption) *CoverLetterGenerator {
	generator := &CoverLetterGenerator{
		llmModel:     llmModel,
		maxBodyWords: 300,
		now:          time.Now,
		logger:       log.New(io.Discard, "", 0),
	}

	for _, opt := range options {
		opt(generator)
	}

	return generator
}

// Generate 生成一封完整的求职信。
// 生成服务出错或正文为空时使用模板兜底，返回值保证非空。
func (g *CoverLetterGenerator) Generate(ctx context.Context, job *types.JobPosting, profile *types.ResumeProfile) string {
	header := g.buildHeader(job, profile)
	closing := g.buildClosing(profile)

	body, err := g.generateBody(ctx, job, profile)
	if err != nil || strings.TrimSpace(body) == "" {
		if err != nil {
			g.logger.Printf("正文生成失败，使用模板兜底: %v", err)
		}
		body = g.fallbackBody(job, profile)
	}

	return header + "\n\n" + strings.TrimSpace(body) + "\n\n" + closing
}

// buildHeader 构建确定性抬头：候选人信息、日期、雇主信息
func (g *CoverLetterGenerator) buildHeader(job *types.JobPosting, profile *types.ResumeProfile) string {
	var sb strings.Builder

	sb.WriteString(profile.Name)
	sb.WriteByte('\n')
	if profile.Contact.Email != "" {
		sb.WriteString(profile.Contact.Email)
		sb.WriteByte('\n')
	}
	if profile.Contact.Phone != "" {
		sb.WriteString(profile.Contact.Phone)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	sb.WriteString(g.now().Format("January 2, 2006"))
	sb.WriteString("\n\n")
	sb.WriteString("Hiring Manager\n")
	sb.WriteString(job.Company)
	if job.Location != "" {
		sb.WriteByte('\n')
		sb.WriteString(job.Location)
	}
	sb.WriteString("\n\nDear Hiring Manager,")

	return sb.String()
}

// buildClosing 构建固定落款
func (g *CoverLetterGenerator) buildClosing(profile *types.ResumeProfile) string {
	return fmt.Sprintf("Thank you for considering my application. I look forward to the opportunity to discuss how I can contribute to your team.\n\nSincerely,\n%s", profile.Name)
}

// generateBody 调用LLM生成正文。
// 单次调用不重试，失败直接交给调用方兜底。
func (g *CoverLetterGenerator) generateBody(ctx context.Context, job *types.JobPosting, profile *types.ResumeProfile) (string, error) {
	systemPrompt := fmt.Sprintf(`你是一个专业的求职信写作专家。根据提供的职位信息和候选人背景，写一段求职信正文。

风格约束：
- 专业、自信的语气，使用与职位描述相同的语言撰写。
- 正文不超过%d个词。
- 只写正文段落，不要包含抬头、称呼、落款或签名。
- 紧扣职位要求，突出候选人最相关的技能和经历。请勿编造候选人没有的经历。`, g.maxBodyWords)

	userPrompt := g.buildBodyPrompt(job, profile)

	messages := []*einoschema.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}

	callCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	response, err := g.llmModel.Generate(callCtx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationService, err)
	}

	g.logger.Printf("[CoverLetterGenerator] LLM Response: %.50s", response.Content)
	return response.Content, nil
}

// buildBodyPrompt 将职位和档案拼装为用户提示词
func (g *CoverLetterGenerator) buildBodyPrompt(job *types.JobPosting, profile *types.ResumeProfile) string {
	var sb strings.Builder

	sb.WriteString("职位信息：\n")
	sb.WriteString(fmt.Sprintf("职位：%s\n公司：%s\n描述：%s\n", job.Title, job.Company, job.Description))
	if len(job.Requirements) > 0 {
		sb.WriteString(fmt.Sprintf("要求：%s\n", strings.Join(job.Requirements, "、")))
	}

	sb.WriteString("\n候选人背景：\n")
	sb.WriteString(fmt.Sprintf("姓名：%s\n", profile.Name))
	if len(profile.Skills) > 0 {
		sb.WriteString(fmt.Sprintf("技能：%s\n", strings.Join(profile.Skills, "、")))
	}
	for _, exp := range profile.Experience {
		sb.WriteString(fmt.Sprintf("经历：%s %s（%s）%s\n", exp.Company, exp.Role, exp.Duration, exp.Description))
	}
	for _, edu := range profile.Education {
		sb.WriteString(fmt.Sprintf("教育：%s %s %s\n", edu.Institution, edu.Degree, edu.Year))
	}

	return sb.String()
}

// fallbackBody 用已知结构化字段拼装正文，不依赖任何外部调用。
// 档案经过Normalize后所有字段保证存在，这里不会越界。
func (g *CoverLetterGenerator) fallbackBody(job *types.JobPosting, profile *types.ResumeProfile) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("I am writing to express my strong interest in the %s position at %s.", job.Title, job.Company))

	if len(profile.Skills) > 0 {
		n := len(profile.Skills)
		if n > 3 {
			n = 3
		}
		sb.WriteString(fmt.Sprintf(" My core skills include %s, which align closely with the requirements of this role.", strings.Join(profile.Skills[:n], ", ")))
	}

	if len(profile.Experience) > 0 {
		exp := profile.Experience[0]
		// 按rune截断，避免把多字节字符切坏
		desc := exp.Description
		if runes := []rune(desc); len(runes) > 120 {
			desc = string(runes[:120]) + "..."
		}
		sb.WriteString(fmt.Sprintf(" In my time as %s at %s, %s", exp.Role, exp.Company, desc))
	}

	sb.WriteString(" I believe my background makes me a strong candidate, and I would welcome the chance to bring my experience to your team.")

	return sb.String()
}

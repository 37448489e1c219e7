package processor

import (
	"context"

	"job-agent-go/internal/types"
)

// TextExtractor 简历文件文本提取接口
type TextExtractor interface {
	// ExtractFromFile 从简历文件提取纯文本
	ExtractFromFile(ctx context.Context, filePath string) (string, error)
}

// ProfileExtractor 结构化档案抽取接口
type ProfileExtractor interface {
	// ExtractProfile 将简历文本解析为结构化档案，返回的档案保证六字段完整
	ExtractProfile(ctx context.Context, resumeText string) (*types.ResumeProfile, error)
}

// JobCatalog 职位目录接口
type JobCatalog interface {
	// Search 按关键词和地点过滤职位
	Search(query string, location string) []types.JobPosting

	// GetJob 按ID查找职位
	GetJob(id int) (*types.JobPosting, error)
}

// LetterGenerator 求职信生成接口
type LetterGenerator interface {
	// Generate 生成完整求职信，返回值保证非空
	Generate(ctx context.Context, job *types.JobPosting, profile *types.ResumeProfile) string
}

// SubmissionAgent 平台投递接口
type SubmissionAgent interface {
	// Apply 在招聘平台上完成一次投递
	Apply(ctx context.Context, job *types.JobPosting, resumePath string, coverLetter string) error
}

package parser

import "errors"

// 解析与生成环节的基础错误类型。
// 调用方可用 errors.Is 区分"文件读不了"和"生成服务不可达"这两类用户可见失败；
// 模型输出质量问题（空响应、非法JSON、字段缺失）不在此列，由各组件内部兜底消化。
var (
	// ErrUnsupportedFormat 文件扩展名不在支持范围内
	ErrUnsupportedFormat = errors.New("不支持的简历文件格式")

	// ErrExtractionFailed 文件损坏或不可读导致的提取失败
	ErrExtractionFailed = errors.New("提取简历文本失败")

	// ErrGenerationService 文本生成服务调用失败（网络/后端错误）
	ErrGenerationService = errors.New("文本生成服务调用失败")
)

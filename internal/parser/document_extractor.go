package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// DocumentTextExtractor 将简历文件（纯文本/PDF/Word文档）提取为单个纯文本字符串。
// 单遍、同步、无重试；页和段落顺序保持，不保留任何结构标记。
type DocumentTextExtractor struct {
	pdfParser *pdf.PDFParser
	logger    *log.Logger
}

// DocumentExtractorOption 提取器配置选项
type DocumentExtractorOption func(*DocumentTextExtractor)

// WithExtractorLogger 配置自定义日志记录器
func WithExtractorLogger(logger *log.Logger) DocumentExtractorOption {
	return func(e *DocumentTextExtractor) {
		e.logger = logger
	}
}

// NewDocumentTextExtractor 初始化文本提取器。
// PDF解析配置为不按页分割，整个文档作为一个连续文本返回。
func NewDocumentTextExtractor(ctx context.Context, options ...DocumentExtractorOption) (*DocumentTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: false,
	})
	if err != nil {
		return nil, fmt.Errorf("创建PDF解析器失败: %w", err)
	}

	extractor := &DocumentTextExtractor{
		pdfParser: p,
		logger:    log.New(io.Discard, "", 0),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor, nil
}

// ExtractFromFile 根据扩展名分发提取逻辑。
// 无法识别的扩展名返回 ErrUnsupportedFormat；文件损坏或不可读返回 ErrExtractionFailed。
func (e *DocumentTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	start := time.Now()
	var text string
	var err error

	switch ext {
	case ".txt", ".text", ".md":
		text, err = e.extractPlainText(filePath)
	case ".pdf":
		text, err = e.extractPDF(ctx, filePath)
	case ".docx":
		text, err = e.extractDocx(filePath)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	if err != nil {
		e.logger.Printf("文本提取失败: %s (用时 %.2f秒)", err, time.Since(start).Seconds())
		return "", err
	}

	e.logger.Printf("文本提取完成: %s -> %d 个字符 (用时 %.2f秒)", filePath, len(text), time.Since(start).Seconds())
	return text, nil
}

// extractPlainText 直接读取纯文本文件
func (e *DocumentTextExtractor) extractPlainText(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return string(data), nil
}

// extractPDF 通过eino PDF解析器提取整个文档的文本
func (e *DocumentTextExtractor) extractPDF(ctx context.Context, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	docs, err := e.pdfParser.Parse(ctx, file, einoParser.WithURI(filePath))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if len(docs) == 0 {
		return "", fmt.Errorf("%w: PDF解析无结果", ErrExtractionFailed)
	}

	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(doc.Content)
		if i < len(docs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String(), nil
}

// extractDocx 从docx容器中提取word/document.xml里的文本。
// docx本质是zip包，正文文本位于 w:t 元素内；段落结束补换行以保持段落顺序。
func (e *DocumentTextExtractor) extractDocx(filePath string) (string, error) {
	reader, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer reader.Close()

	var docEntry *zip.File
	for _, f := range reader.File {
		if f.Name == "word/document.xml" {
			docEntry = f
			break
		}
	}
	if docEntry == nil {
		return "", fmt.Errorf("%w: docx缺少word/document.xml", ErrExtractionFailed)
	}

	rc, err := docEntry.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	defer rc.Close()

	var sb strings.Builder
	decoder := xml.NewDecoder(rc)
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: 解析document.xml失败: %v", ErrExtractionFailed, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}

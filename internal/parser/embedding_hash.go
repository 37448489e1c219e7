package parser

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
)

// DefaultEmbeddingDimensions 默认向量维度
const DefaultEmbeddingDimensions = 100

// HashEmbedder 基于词哈希的确定性文本向量化器，实现 cloudwego/eino 的 embedding.Embedder 接口。
//
// 做法：文本小写后按空白分词，保持首次出现顺序去重，取前 D 个唯一词，
// 第 i 个槽位写入 FNV-1a(词_i) mod D，其余槽位保持为0。
// 这是一个刻意廉价的指纹而非学习型嵌入：不依赖网络调用，同一文本在任何进程、
// 任何运行中都产生逐位相同的向量。哈希算法固定为 FNV-1a 32位，不可替换为
// 语言内置的随机化哈希。
type HashEmbedder struct {
	dimensions int
}

// 确保HashEmbedder实现了eino的Embedder接口
var _ embedding.Embedder = (*HashEmbedder)(nil)

// HashEmbedderOption 嵌入器配置选项
type HashEmbedderOption func(*HashEmbedder)

// WithDimensions 设置向量维度
func WithDimensions(d int) HashEmbedderOption {
	return func(e *HashEmbedder) {
		e.dimensions = d
	}
}

// NewHashEmbedder 创建哈希嵌入器
func NewHashEmbedder(options ...HashEmbedderOption) *HashEmbedder {
	e := &HashEmbedder{
		dimensions: DefaultEmbeddingDimensions,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Dimensions 返回向量维度
func (e *HashEmbedder) Dimensions() int {
	return e.dimensions
}

// EmbedStrings 将一批文本转换为定长向量，实现 embedding.Embedder 接口。
// 纯函数：相同输入必然得到相同输出，不会返回网络类错误。
func (e *HashEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	if e.dimensions <= 0 {
		return nil, fmt.Errorf("非法的向量维度: %d", e.dimensions)
	}

	vectors := make([][]float64, 0, len(texts))
	for _, text := range texts {
		vectors = append(vectors, e.embedOne(text))
	}
	return vectors, nil
}

// embedOne 生成单个文本的向量
func (e *HashEmbedder) embedOne(text string) []float64 {
	vector := make([]float64, e.dimensions)

	words := strings.Fields(strings.ToLower(text))
	seen := make(map[string]struct{}, len(words))

	slot := 0
	for _, word := range words {
		if slot >= e.dimensions {
			break
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		vector[slot] = float64(hashToken(word) % uint32(e.dimensions))
		slot++
	}
	return vector
}

// hashToken 固定的字符串哈希（FNV-1a 32位）。
// 向量的跨进程稳定性完全依赖这里不使用随机化哈希。
func hashToken(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return h.Sum32()
}

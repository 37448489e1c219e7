package parser

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fnv32a 测试侧独立计算FNV-1a哈希，避免与被测实现共享代码
func fnv32a(token string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return h.Sum32()
}

// TestHashEmbedderDeterminism 测试相同文本在多次调用间产生逐位相同的向量
func TestHashEmbedderDeterminism(t *testing.T) {
	embedder := NewHashEmbedder()
	ctx := context.Background()

	text := "Python developer with machine learning experience"

	first, err := embedder.EmbedStrings(ctx, []string{text})
	require.NoError(t, err, "向量化不应返回错误")
	require.Len(t, first, 1, "应返回一个向量")

	second, err := embedder.EmbedStrings(ctx, []string{text})
	require.NoError(t, err, "向量化不应返回错误")

	assert.Equal(t, first[0], second[0], "相同文本的向量应逐位相同")
	assert.Len(t, first[0], DefaultEmbeddingDimensions, "向量维度应为默认值")
}

// TestHashEmbedderSlotValues 测试槽位值与词序的对应关系
func TestHashEmbedderSlotValues(t *testing.T) {
	embedder := NewHashEmbedder(WithDimensions(10))
	ctx := context.Background()

	// "go"重复出现，只有首次计入；大小写归一后"Go"和"go"是同一个词
	vectors, err := embedder.EmbedStrings(ctx, []string{"Go redis go mysql"})
	require.NoError(t, err, "向量化不应返回错误")
	require.Len(t, vectors, 1)

	vec := vectors[0]
	require.Len(t, vec, 10, "向量维度应为10")

	assert.Equal(t, float64(fnv32a("go")%10), vec[0], "槽位0应对应首个唯一词go")
	assert.Equal(t, float64(fnv32a("redis")%10), vec[1], "槽位1应对应redis")
	assert.Equal(t, float64(fnv32a("mysql")%10), vec[2], "槽位2应对应mysql，重复的go被跳过")
	for i := 3; i < 10; i++ {
		assert.Zero(t, vec[i], "剩余槽位应保持为0")
	}
}

// TestHashEmbedderDimensionCap 测试唯一词数超过维度时只取前D个
func TestHashEmbedderDimensionCap(t *testing.T) {
	embedder := NewHashEmbedder(WithDimensions(2))
	ctx := context.Background()

	vectors, err := embedder.EmbedStrings(ctx, []string{"alpha beta gamma delta"})
	require.NoError(t, err, "向量化不应返回错误")

	vec := vectors[0]
	require.Len(t, vec, 2, "向量维度应为2")
	assert.Equal(t, float64(fnv32a("alpha")%2), vec[0], "槽位0应对应alpha")
	assert.Equal(t, float64(fnv32a("beta")%2), vec[1], "槽位1应对应beta，超出维度的词被丢弃")
}

// TestHashEmbedderEmptyText 测试空文本得到全零向量
func TestHashEmbedderEmptyText(t *testing.T) {
	embedder := NewHashEmbedder(WithDimensions(5))
	ctx := context.Background()

	vectors, err := embedder.EmbedStrings(ctx, []string{"", "   "})
	require.NoError(t, err, "向量化不应返回错误")
	require.Len(t, vectors, 2)

	for _, vec := range vectors {
		require.Len(t, vec, 5)
		for _, v := range vec {
			assert.Zero(t, v, "空文本的向量应全为0")
		}
	}
}

// TestHashEmbedderBatch 测试批量输入的向量数量与输入一一对应
func TestHashEmbedderBatch(t *testing.T) {
	embedder := NewHashEmbedder()
	ctx := context.Background()

	texts := []string{"backend engineer", "data scientist", "devops"}
	vectors, err := embedder.EmbedStrings(ctx, texts)
	require.NoError(t, err, "向量化不应返回错误")
	assert.Len(t, vectors, len(texts), "向量数量应与输入文本数量一致")
}

package ranker

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-agent-go/internal/parser"
	"job-agent-go/internal/types"
)

// failingEmbedder 总是报错的嵌入器，用于测试降级路径
type failingEmbedder struct{}

func (f *failingEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	return nil, errors.New("embedding service unavailable")
}

func rankerTestJobs() []types.JobPosting {
	return []types.JobPosting{
		{
			ID:           1,
			Title:        "Python Developer",
			Description:  "Backend development with Python and Django.",
			Requirements: []string{"Python", "Django", "REST APIs"},
		},
		{
			ID:           2,
			Title:        "AI Engineer",
			Description:  "Build machine learning pipelines in Python.",
			Requirements: []string{"Python", "machine learning", "TensorFlow"},
		},
		{
			ID:           3,
			Title:        "Full Stack Developer",
			Description:  "React frontend with Node.js backend.",
			Requirements: []string{"JavaScript", "React", "Node.js"},
		},
	}
}

func pythonMLProfile() *types.ResumeProfile {
	profile := &types.ResumeProfile{
		Name:   "张三",
		Skills: []string{"Python", "machine learning"},
	}
	profile.Normalize()
	return profile
}

// TestFindSimilarReturnsTopK 测试精确查询返回恰好k条且无重复
func TestFindSimilarReturnsTopK(t *testing.T) {
	r := NewRanker(parser.NewHashEmbedder(), rankerTestJobs())

	idx, err := r.BuildIndex(context.Background())
	require.NoError(t, err, "索引构建不应失败")
	require.Equal(t, 3, idx.Size(), "索引应包含全部职位")

	results, outcome := r.FindSimilar(context.Background(), idx, pythonMLProfile(), 2)
	assert.Equal(t, RankExact, outcome, "结果应标记为精确排序")
	require.Len(t, results, 2, "应返回恰好k条")

	seen := make(map[int]bool)
	for _, job := range results {
		assert.False(t, seen[job.ID], "结果中不应出现重复职位")
		seen[job.ID] = true
	}
}

// TestFindSimilarOrdering 测试结果按距离升序，校验排序与独立计算的距离一致
func TestFindSimilarOrdering(t *testing.T) {
	embedder := parser.NewHashEmbedder()
	jobs := rankerTestJobs()
	r := NewRanker(embedder, jobs)

	idx, err := r.BuildIndex(context.Background())
	require.NoError(t, err, "索引构建不应失败")

	profile := pythonMLProfile()
	results, outcome := r.FindSimilar(context.Background(), idx, profile, 3)
	require.Equal(t, RankExact, outcome)
	require.Len(t, results, 3)

	// 独立重算每个结果与查询向量的距离，验证非递减
	queryVecs, err := embedder.EmbedStrings(context.Background(), []string{"Python machine learning"})
	require.NoError(t, err)
	query := queryVecs[0]

	var prev float64 = -1
	for _, job := range results {
		j := job
		vecs, err := embedder.EmbedStrings(context.Background(), []string{jobText(&j)})
		require.NoError(t, err)
		dist := squaredL2(query, vecs[0])
		assert.GreaterOrEqual(t, dist, prev, "结果距离应按非递减顺序排列")
		prev = dist
	}
}

// TestFindSimilarKLargerThanCatalog 测试k超过目录规模时返回全部职位
func TestFindSimilarKLargerThanCatalog(t *testing.T) {
	r := NewRanker(parser.NewHashEmbedder(), rankerTestJobs())

	idx, err := r.BuildIndex(context.Background())
	require.NoError(t, err)

	results, outcome := r.FindSimilar(context.Background(), idx, pythonMLProfile(), 10)
	assert.Equal(t, RankExact, outcome)
	assert.Len(t, results, 3, "k超过目录规模时应返回全部职位")
}

// TestFindSimilarNilIndexFallback 测试索引未构建时按目录顺序降级返回
func TestFindSimilarNilIndexFallback(t *testing.T) {
	jobs := rankerTestJobs()
	r := NewRanker(parser.NewHashEmbedder(), jobs)

	results, outcome := r.FindSimilar(context.Background(), nil, pythonMLProfile(), 2)
	assert.Equal(t, RankFallbackUnranked, outcome, "索引未构建应标记为降级结果")
	require.Len(t, results, 2, "降级时应返回目录前k条")
	assert.Equal(t, jobs[0].ID, results[0].ID, "降级结果应保持目录原始顺序")
	assert.Equal(t, jobs[1].ID, results[1].ID, "降级结果应保持目录原始顺序")
}

// TestFindSimilarEmbedFailureFallback 测试查询向量计算失败时的降级
func TestFindSimilarEmbedFailureFallback(t *testing.T) {
	jobs := rankerTestJobs()

	// 先用正常嵌入器构建索引，再用故障嵌入器查询
	idx, err := NewRanker(parser.NewHashEmbedder(), jobs).BuildIndex(context.Background())
	require.NoError(t, err)

	r := NewRanker(&failingEmbedder{}, jobs)
	results, outcome := r.FindSimilar(context.Background(), idx, pythonMLProfile(), 2)
	assert.Equal(t, RankFallbackUnranked, outcome, "查询失败应标记为降级结果")
	require.Len(t, results, 2)
	assert.Equal(t, jobs[0].ID, results[0].ID, "降级结果应保持目录原始顺序")
}

// TestBuildIndexIdempotent 测试相同目录重复构建的索引产生相同查询结果
func TestBuildIndexIdempotent(t *testing.T) {
	r := NewRanker(parser.NewHashEmbedder(), rankerTestJobs())

	first, err := r.BuildIndex(context.Background())
	require.NoError(t, err)
	second, err := r.BuildIndex(context.Background())
	require.NoError(t, err)

	profile := pythonMLProfile()
	resultsA, _ := r.FindSimilar(context.Background(), first, profile, 3)
	resultsB, _ := r.FindSimilar(context.Background(), second, profile, 3)
	assert.Equal(t, resultsA, resultsB, "两次构建的索引查询结果应完全一致")
}

// TestBuildIndexEmptyCatalog 测试空目录构建出空索引
func TestBuildIndexEmptyCatalog(t *testing.T) {
	r := NewRanker(parser.NewHashEmbedder(), nil)

	idx, err := r.BuildIndex(context.Background())
	require.NoError(t, err, "空目录构建不应失败")
	assert.Equal(t, 0, idx.Size(), "空目录的索引应为空")

	results, outcome := r.FindSimilar(context.Background(), idx, pythonMLProfile(), 5)
	assert.Equal(t, RankFallbackUnranked, outcome, "空索引查询应走降级路径")
	assert.Empty(t, results, "空目录降级结果应为空")
}

// TestFindSimilarNonPositiveK 测试k非正时返回空结果
func TestFindSimilarNonPositiveK(t *testing.T) {
	r := NewRanker(parser.NewHashEmbedder(), rankerTestJobs())
	idx, err := r.BuildIndex(context.Background())
	require.NoError(t, err)

	results, outcome := r.FindSimilar(context.Background(), idx, pythonMLProfile(), 0)
	assert.Equal(t, RankExact, outcome)
	assert.Empty(t, results, "k为0时应返回空结果")
}

// TestSquaredL2 测试平方距离计算，包括维度不一致的情况
func TestSquaredL2(t *testing.T) {
	assert.Equal(t, 0.0, squaredL2([]float64{1, 2}, []float64{1, 2}), "相同向量距离应为0")
	assert.Equal(t, 8.0, squaredL2([]float64{0, 0}, []float64{2, 2}), "距离计算应正确")
	assert.Equal(t, 9.0, squaredL2([]float64{1, 2}, []float64{1, 2, 3}), "多出的维度应按0处理")
}

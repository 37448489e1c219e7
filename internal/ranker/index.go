package ranker

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"job-agent-go/internal/types"
)

// RankOutcome 标识一次相似度查询的结果来源
type RankOutcome int

const (
	// RankExact 精确排序结果：按向量距离升序返回
	RankExact RankOutcome = iota
	// RankFallbackUnranked 降级结果：索引未构建或检索失败，按目录顺序返回前k条
	RankFallbackUnranked
)

// String 返回结果来源的可读名称
func (o RankOutcome) String() string {
	switch o {
	case RankExact:
		return "exact"
	case RankFallbackUnranked:
		return "fallback_unranked"
	default:
		return "unknown"
	}
}

// FlatIndex 平铺暴力最近邻索引。
// 职位和向量以平行切片存储，下标i互相对应；查询时与全量向量逐一比较，
// 以精确性换规模，适用于最多几千条职位的目录。
// 构建完成后只读，不支持增量更新；重建即整体替换。
type FlatIndex struct {
	jobs    []types.JobPosting
	vectors [][]float64
}

// Size 返回索引中的职位数量
func (idx *FlatIndex) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.jobs)
}

// Ranker 职位相似度排序器。
// 持有目录快照用于降级路径；索引本身是 BuildIndex 返回的独立值，
// 由调用方持有并传回查询，避免隐藏的共享可变状态。
type Ranker struct {
	embedder embedding.Embedder
	jobs     []types.JobPosting
	logger   *log.Logger
}

// RankerOption 排序器配置选项
type RankerOption func(*Ranker)

// WithRankerLogger 配置自定义日志记录器
func WithRankerLogger(logger *log.Logger) RankerOption {
	return func(r *Ranker) {
		r.logger = logger
	}
}

// NewRanker 创建排序器。jobs是目录快照，用于索引构建和降级返回。
func NewRanker(embedder embedding.Embedder, jobs []types.JobPosting, options ...RankerOption) *Ranker {
	r := &Ranker{
		embedder: embedder,
		jobs:     append([]types.JobPosting(nil), jobs...),
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// BuildIndex 为目录中的每个职位计算一个向量并构建平铺索引。
// 每次调用都从头构建并返回新索引，旧索引不受影响；
// 相同目录重复构建得到的索引产生完全相同的查询结果。
func (r *Ranker) BuildIndex(ctx context.Context) (*FlatIndex, error) {
	if len(r.jobs) == 0 {
		return &FlatIndex{}, nil
	}

	texts := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		texts = append(texts, jobText(&job))
	}

	vectors, err := r.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("计算职位向量失败: %w", err)
	}
	if len(vectors) != len(r.jobs) {
		return nil, fmt.Errorf("向量数量与职位数量不一致: %d != %d", len(vectors), len(r.jobs))
	}

	idx := &FlatIndex{
		jobs:    append([]types.JobPosting(nil), r.jobs...),
		vectors: vectors,
	}

	r.logger.Printf("索引构建完成: %d 个职位", idx.Size())
	return idx, nil
}

// FindSimilar 返回与候选人档案最相似的k个职位，按距离升序。
//
// 降级策略：索引未构建(idx为nil或空)或查询向量计算失败时，不报错，
// 按目录原始顺序返回前k条并以 RankFallbackUnranked 标记，
// 调用方可据此感知降级但不需要处理失败。
func (r *Ranker) FindSimilar(ctx context.Context, idx *FlatIndex, profile *types.ResumeProfile, k int) ([]types.JobPosting, RankOutcome) {
	if k <= 0 {
		return []types.JobPosting{}, RankExact
	}

	if idx.Size() == 0 {
		r.logger.Printf("索引未构建，降级返回目录前%d条", k)
		return firstK(r.jobs, k), RankFallbackUnranked
	}

	queryVectors, err := r.embedder.EmbedStrings(ctx, []string{profileText(profile)})
	if err != nil || len(queryVectors) != 1 {
		r.logger.Printf("查询向量计算失败，降级返回目录前%d条: %v", k, err)
		return firstK(idx.jobs, k), RankFallbackUnranked
	}
	query := queryVectors[0]

	// 距离全量计算后按(距离, 插入序)排序，距离相同时保持目录原始顺序
	order := make([]int, len(idx.vectors))
	distances := make([]float64, len(idx.vectors))
	for i, vec := range idx.vectors {
		order[i] = i
		distances[i] = squaredL2(query, vec)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]types.JobPosting, 0, k)
	for _, i := range order[:k] {
		results = append(results, idx.jobs[i])
	}
	return results, RankExact
}

// squaredL2 计算两个向量的平方欧氏距离。
// 排序只关心相对大小，省去开方。维度不一致时多出的部分按0处理。
func squaredL2(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	for i := n; i < len(a); i++ {
		sum += a[i] * a[i]
	}
	for i := n; i < len(b); i++ {
		sum += b[i] * b[i]
	}
	return sum
}

// jobText 拼接职位的文本表示：标题、描述、要求
func jobText(job *types.JobPosting) string {
	parts := []string{job.Title, job.Description}
	if len(job.Requirements) > 0 {
		parts = append(parts, strings.Join(job.Requirements, " "))
	}
	return strings.Join(parts, "\n")
}

// profileText 拼接档案的文本表示：技能和经历描述
func profileText(profile *types.ResumeProfile) string {
	var parts []string
	if len(profile.Skills) > 0 {
		parts = append(parts, strings.Join(profile.Skills, " "))
	}
	for _, exp := range profile.Experience {
		parts = append(parts, exp.Description)
	}
	return strings.Join(parts, "\n")
}

// firstK 返回切片的前k个元素的副本
func firstK(jobs []types.JobPosting, k int) []types.JobPosting {
	if k > len(jobs) {
		k = len(jobs)
	}
	return append([]types.JobPosting(nil), jobs[:k]...)
}

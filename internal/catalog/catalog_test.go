package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-agent-go/internal/types"
)

// TestSearchByKeyword 测试关键词对标题/描述/公司的大小写不敏感匹配
func TestSearchByKeyword(t *testing.T) {
	c := NewMockCatalog()

	results := c.Search("python", "")
	require.Len(t, results, 1, "关键词python应只匹配一个职位")
	assert.Equal(t, "Senior Python Developer", results[0].Title, "应匹配到Python开发职位")

	// 大小写变化不影响匹配结果
	upper := c.Search("PYTHON", "")
	assert.Equal(t, results, upper, "大小写不同的关键词应返回相同结果")
}

// TestSearchByLocation 测试地点过滤
func TestSearchByLocation(t *testing.T) {
	c := NewMockCatalog()

	results := c.Search("", "india")
	require.NotEmpty(t, results, "应有位于India的职位")
	for _, job := range results {
		assert.Contains(t, job.Location, "India", "所有结果的地点都应包含India")
	}
}

// TestSearchCombined 测试关键词与地点的组合过滤
func TestSearchCombined(t *testing.T) {
	c := NewMockCatalog()

	results := c.Search("developer", "mumbai")
	require.Len(t, results, 1, "组合条件应只匹配一个职位")
	assert.Equal(t, "Full Stack Developer", results[0].Title)
	assert.Equal(t, "Mumbai, India", results[0].Location)
}

// TestSearchEmptyFilters 测试空条件返回全部职位
func TestSearchEmptyFilters(t *testing.T) {
	c := NewMockCatalog()

	results := c.Search("", "")
	assert.Len(t, results, 12, "空条件应返回全部12个内置职位")
}

// TestSearchNoMatch 测试无匹配时返回空列表
func TestSearchNoMatch(t *testing.T) {
	c := NewMockCatalog()

	results := c.Search("cobol", "")
	assert.Empty(t, results, "无匹配时应返回空列表")
}

// TestSearchReturnsCopy 测试返回的是副本，修改不影响目录内部状态
func TestSearchReturnsCopy(t *testing.T) {
	c := NewMockCatalog()

	first := c.Search("", "")
	first[0].Title = "modified"

	second := c.Search("", "")
	assert.NotEqual(t, "modified", second[0].Title, "修改返回结果不应影响目录内部数据")
}

// TestGetJob 测试按ID查找职位
func TestGetJob(t *testing.T) {
	c := NewMockCatalog()

	job, err := c.GetJob(1)
	require.NoError(t, err, "存在的ID不应返回错误")
	assert.Equal(t, "Senior Python Developer", job.Title)

	_, err = c.GetJob(999)
	require.Error(t, err, "不存在的ID应返回错误")
	assert.ErrorIs(t, err, ErrJobNotFound, "错误类型应为职位不存在")
}

// TestWithJobs 测试用自定义职位替换内置数据
func TestWithJobs(t *testing.T) {
	custom := []types.JobPosting{
		{ID: 100, Title: "Go Developer", Company: "Acme", Location: "Beijing"},
	}
	c := NewMockCatalog(WithJobs(custom))

	results := c.Search("", "")
	require.Len(t, results, 1, "目录应只包含自定义职位")
	assert.Equal(t, 100, results[0].ID)
}

package catalog

import (
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"job-agent-go/internal/types"
)

// ErrJobNotFound 指定ID的职位不存在
var ErrJobNotFound = errors.New("职位不存在")

// MockCatalog 内置职位目录，返回固定的职位数据。
// 实现与真实招聘平台抓取器相同的查询接口，职位顺序在一次快照内稳定。
type MockCatalog struct {
	jobs   []types.JobPosting
	logger *log.Logger
}

// CatalogOption 目录配置选项
type CatalogOption func(*MockCatalog)

// WithCatalogLogger 配置自定义日志记录器
func WithCatalogLogger(logger *log.Logger) CatalogOption {
	return func(c *MockCatalog) {
		c.logger = logger
	}
}

// WithJobs 替换内置职位数据，用于测试
func WithJobs(jobs []types.JobPosting) CatalogOption {
	return func(c *MockCatalog) {
		c.jobs = jobs
	}
}

// NewMockCatalog 创建内置职位目录
func NewMockCatalog(options ...CatalogOption) *MockCatalog {
	c := &MockCatalog{
		jobs:   generateMockJobs(),
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(c)
	}
	c.logger.Printf("职位目录初始化完成: %d 个职位", len(c.jobs))
	return c
}

// Search 按关键词和地点过滤职位。
// 关键词对标题/描述/公司做大小写不敏感的子串匹配，地点同理；
// 两个条件都为空时返回全部职位。返回的是副本，调用方可自由修改。
func (c *MockCatalog) Search(query string, location string) []types.JobPosting {
	filtered := c.jobs

	if query != "" {
		q := strings.ToLower(query)
		var matched []types.JobPosting
		for _, job := range filtered {
			if strings.Contains(strings.ToLower(job.Title), q) ||
				strings.Contains(strings.ToLower(job.Description), q) ||
				strings.Contains(strings.ToLower(job.Company), q) {
				matched = append(matched, job)
			}
		}
		filtered = matched
		c.logger.Printf("关键词 %q 匹配到 %d 个职位", query, len(filtered))
	}

	if location != "" {
		loc := strings.ToLower(location)
		var matched []types.JobPosting
		for _, job := range filtered {
			if strings.Contains(strings.ToLower(job.Location), loc) {
				matched = append(matched, job)
			}
		}
		filtered = matched
		c.logger.Printf("地点 %q 匹配到 %d 个职位", location, len(filtered))
	}

	return append([]types.JobPosting(nil), filtered...)
}

// GetJob 按ID查找职位
func (c *MockCatalog) GetJob(id int) (*types.JobPosting, error) {
	for _, job := range c.jobs {
		if job.ID == id {
			found := job
			return &found, nil
		}
	}
	return nil, ErrJobNotFound
}

// generateMockJobs 生成内置职位数据
func generateMockJobs() []types.JobPosting {
	now := time.Now()
	return []types.JobPosting{
		{
			ID:          1,
			Title:       "Senior Python Developer",
			Company:     "TechCorp",
			Location:    "San Francisco, CA",
			Description: "Looking for an experienced Python developer with expertise in web development and AI/ML.",
			Requirements: []string{
				"5+ years of Python experience",
				"Experience with FastAPI/Django",
				"Knowledge of ML frameworks",
				"Strong problem-solving skills",
			},
			SalaryRange: "$120,000 - $150,000",
			Platform:    types.PlatformLinkedIn,
			PostedDate:  now,
		},
		{
			ID:          2,
			Title:       "AI Engineer",
			Company:     "AI Solutions Inc",
			Location:    "Remote",
			Description: "Join our AI team to build cutting-edge machine learning solutions.",
			Requirements: []string{
				"MS/PhD in Computer Science or related field",
				"Experience with TensorFlow/PyTorch",
				"Strong background in NLP",
				"Research experience",
			},
			SalaryRange: "$130,000 - $160,000",
			Platform:    types.PlatformIndeed,
			PostedDate:  now,
		},
		{
			ID:          3,
			Title:       "Full Stack Developer",
			Company:     "WebTech",
			Location:    "New York, NY",
			Description: "Full stack developer position focusing on modern web technologies.",
			Requirements: []string{
				"3+ years of full stack development",
				"React/Node.js experience",
				"Database design skills",
				"Agile methodology",
			},
			SalaryRange: "$100,000 - $130,000",
			Platform:    types.PlatformInternshala,
			PostedDate:  now,
		},
		{
			ID:          4,
			Title:       "Data Scientist",
			Company:     "DataWorks",
			Location:    "Boston, MA",
			Description: "Data scientist position focusing on predictive analytics and machine learning.",
			Requirements: []string{
				"Strong statistical background",
				"Python/R programming",
				"Experience with big data tools",
				"Data visualization skills",
			},
			SalaryRange: "$110,000 - $140,000",
			Platform:    types.PlatformLinkedIn,
			PostedDate:  now,
		},
		{
			ID:          5,
			Title:       "DevOps Engineer",
			Company:     "CloudTech",
			Location:    "Seattle, WA",
			Description: "DevOps engineer position focusing on cloud infrastructure and automation.",
			Requirements: []string{
				"AWS/Azure experience",
				"Kubernetes/Docker",
				"CI/CD pipeline experience",
				"Infrastructure as Code",
			},
			SalaryRange: "$115,000 - $145,000",
			Platform:    types.PlatformIndeed,
			PostedDate:  now,
		},
		{
			ID:          6,
			Title:       "Machine Learning Engineer",
			Company:     "ML Innovations",
			Location:    "Austin, TX",
			Description: "ML engineer position focusing on developing and deploying ML models.",
			Requirements: []string{
				"Strong ML fundamentals",
				"Python programming",
				"Model deployment experience",
				"Cloud platform knowledge",
			},
			SalaryRange: "$125,000 - $155,000",
			Platform:    types.PlatformLinkedIn,
			PostedDate:  now,
		},
		{
			ID:          7,
			Title:       "Software Engineer",
			Company:     "CodeMasters",
			Location:    "Chicago, IL",
			Description: "Software engineer position focusing on scalable applications.",
			Requirements: []string{
				"Strong algorithms knowledge",
				"Java/Python experience",
				"System design skills",
				"Agile development",
			},
			SalaryRange: "$95,000 - $125,000",
			Platform:    types.PlatformInternshala,
			PostedDate:  now,
		},
		{
			ID:          8,
			Title:       "Senior Software Engineer",
			Company:     "TechMahindra",
			Location:    "Bangalore, India",
			Description: "Looking for a senior software engineer to join our growing team in Bangalore.",
			Requirements: []string{
				"5+ years of software development experience",
				"Strong Java/Python skills",
				"Experience with microservices architecture",
				"Cloud platform experience (AWS/Azure)",
			},
			SalaryRange: "₹25,00,000 - ₹35,00,000",
			Platform:    types.PlatformLinkedIn,
			PostedDate:  now,
		},
		{
			ID:          9,
			Title:       "AI/ML Engineer",
			Company:     "Infosys",
			Location:    "Hyderabad, India",
			Description: "Join our AI/ML team to work on cutting-edge projects in natural language processing and computer vision.",
			Requirements: []string{
				"3+ years of ML experience",
				"Strong Python programming",
				"Experience with TensorFlow/PyTorch",
				"Published research papers (preferred)",
			},
			SalaryRange: "₹20,00,000 - ₹30,00,000",
			Platform:    types.PlatformIndeed,
			PostedDate:  now,
		},
		{
			ID:          10,
			Title:       "Full Stack Developer",
			Company:     "TCS",
			Location:    "Mumbai, India",
			Description: "Full stack developer position focusing on modern web technologies and cloud platforms.",
			Requirements: []string{
				"4+ years of full stack development",
				"React/Angular experience",
				"Node.js/Python backend",
				"Cloud platform knowledge",
			},
			SalaryRange: "₹18,00,000 - ₹28,00,000",
			Platform:    types.PlatformLinkedIn,
			PostedDate:  now,
		},
		{
			ID:          11,
			Title:       "DevOps Engineer",
			Company:     "Wipro",
			Location:    "Pune, India",
			Description: "DevOps engineer position focusing on cloud infrastructure and automation.",
			Requirements: []string{
				"3+ years of DevOps experience",
				"AWS/Azure certification",
				"Kubernetes/Docker expertise",
				"CI/CD pipeline implementation",
			},
			SalaryRange: "₹22,00,000 - ₹32,00,000",
			Platform:    types.PlatformIndeed,
			PostedDate:  now,
		},
		{
			ID:          12,
			Title:       "Data Scientist",
			Company:     "HCL Technologies",
			Location:    "Chennai, India",
			Description: "Data scientist position focusing on predictive analytics and machine learning solutions.",
			Requirements: []string{
				"Strong statistical background",
				"Python/R programming",
				"Experience with big data tools",
				"Data visualization skills",
			},
			SalaryRange: "₹20,00,000 - ₹30,00,000",
			Platform:    types.PlatformLinkedIn,
			PostedDate:  now,
		},
	}
}

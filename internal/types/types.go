package types

import "time"

// Contact 候选人联系方式
type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Experience 一段工作/实习经历
type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Education 一条教育经历
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Project 一个项目经历
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
}

// ResumeProfile 简历解析后的结构化档案。
// 不变式：六个顶层字段在抽取完成后必须全部存在，缺失字段由 Normalize 用空值补齐，
// 下游（排序器、求职信生成器）可以无条件假设该结构完整。
type ResumeProfile struct {
	Name       string       `json:"name"`
	Contact    Contact      `json:"contact"`
	Skills     []string     `json:"skills"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	Projects   []Project    `json:"projects"`
}

// UnknownProfile 返回规范的"未知"档案，用于LLM输出完全不可解析时的兜底
func UnknownProfile() *ResumeProfile {
	return &ResumeProfile{
		Name:       "Unknown",
		Contact:    Contact{},
		Skills:     []string{},
		Experience: []Experience{},
		Education:  []Education{},
		Projects:   []Project{},
	}
}

// Normalize 强制补齐所有必需字段的空缺，保证结构不变式成立
func (p *ResumeProfile) Normalize() {
	if p.Name == "" {
		p.Name = "Unknown"
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
}

// Platform 招聘平台
type Platform string

const (
	PlatformLinkedIn    Platform = "LinkedIn"
	PlatformIndeed      Platform = "Indeed"
	PlatformInternshala Platform = "Internshala"
)

// JobPosting 一条职位信息。ID在一次目录快照内唯一，用作去重/查找键。
type JobPosting struct {
	ID           int       `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	Description  string    `json:"description"`
	Requirements []string  `json:"requirements"`
	SalaryRange  string    `json:"salary_range"`
	Platform     Platform  `json:"platform"`
	PostedDate   time.Time `json:"posted_date"`
}

// ApplicationStatus 投递状态
type ApplicationStatus string

const (
	StatusApplied     ApplicationStatus = "applied"
	StatusInterviewed ApplicationStatus = "interviewed"
	StatusRejected    ApplicationStatus = "rejected"
	StatusAccepted    ApplicationStatus = "accepted"
)

// Valid 判断状态值是否在允许的集合内
func (s ApplicationStatus) Valid() bool {
	switch s {
	case StatusApplied, StatusInterviewed, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

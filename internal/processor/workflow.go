package processor

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/cloudwego/eino/components/embedding"

	"job-agent-go/internal/ranker"
	"job-agent-go/internal/storage"
	"job-agent-go/internal/storage/models"
	"job-agent-go/internal/types"
)

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	// 核心组件接口
	Extractor TextExtractor    // 简历文件文本提取
	Profiler  ProfileExtractor // 结构化档案抽取
	Catalog   JobCatalog       // 职位目录
	Letters   LetterGenerator  // 求职信生成
	Agent     SubmissionAgent  // 平台投递

	// 向量化，索引构建和查询共用
	Embedder embedding.Embedder

	// 存储层依赖
	Storage *storage.Storage
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	// 默认返回的相似职位数量
	DefaultTopK int

	Logger *log.Logger
}

// Workflow 求职助手工作流编排器。
// 串联 提取→解析→搜索→排序→求职信→投递 各环节，每个用户动作同步执行到完成。
type Workflow struct {
	components Components
	settings   Settings
}

// NewWorkflow 创建工作流编排器
func NewWorkflow(components Components, settings Settings) (*Workflow, error) {
	if components.Extractor == nil {
		return nil, fmt.Errorf("文本提取器不能为空")
	}
	if components.Profiler == nil {
		return nil, fmt.Errorf("档案抽取器不能为空")
	}
	if components.Catalog == nil {
		return nil, fmt.Errorf("职位目录不能为空")
	}
	if components.Embedder == nil {
		return nil, fmt.Errorf("嵌入器不能为空")
	}

	if settings.DefaultTopK <= 0 {
		settings.DefaultTopK = 5
	}
	if settings.Logger == nil {
		settings.Logger = log.New(io.Discard, "", 0)
	}

	return &Workflow{components: components, settings: settings}, nil
}

// ParseResume 解析一份简历文件：提取文本、抽取结构化档案、归档原件和解析结果。
// 原件上传和记录落库是尽力而为的归档动作，失败只告警；
// 文本提取失败和生成服务失败按各自的错误类型向上返回。
func (w *Workflow) ParseResume(ctx context.Context, userID uint, filePath string) (*types.ResumeProfile, error) {
	text, err := w.components.Extractor.ExtractFromFile(ctx, filePath)
	if err != nil {
		return nil, err
	}

	profile, err := w.components.Profiler.ExtractProfile(ctx, text)
	if err != nil {
		return nil, err
	}

	w.archiveResume(ctx, userID, filePath, profile)
	return profile, nil
}

// archiveResume 归档简历原件和解析结果
func (w *Workflow) archiveResume(ctx context.Context, userID uint, filePath string, profile *types.ResumeProfile) {
	if w.components.Storage == nil {
		return
	}

	var objectKey, contentMD5 string
	if w.components.Storage.MinIO != nil {
		file, err := os.Open(filePath)
		if err != nil {
			w.settings.Logger.Printf("打开简历原件失败，跳过归档: %v", err)
		} else {
			defer file.Close()
			stat, statErr := file.Stat()
			if statErr != nil {
				w.settings.Logger.Printf("读取简历原件信息失败，跳过归档: %v", statErr)
			} else {
				objectKey, contentMD5, err = w.components.Storage.MinIO.UploadResumeFile(ctx, filepath.Base(filePath), file, stat.Size())
				if err != nil {
					w.settings.Logger.Printf("%v", newUploadError(err.Error()))
				}
			}
		}
	}

	if w.components.Storage.MySQL != nil {
		profileJSON, err := models.ProfileToJSON(profile)
		if err != nil {
			w.settings.Logger.Printf("序列化档案失败，跳过落库: %v", err)
			return
		}
		record := &models.ResumeRecord{
			UserID:           userID,
			OriginalFilename: filepath.Base(filePath),
			ObjectKey:        objectKey,
			RawTextMD5:       contentMD5,
			ProfileJSON:      profileJSON,
		}
		if err := w.components.Storage.MySQL.SaveResumeRecord(ctx, record); err != nil {
			w.settings.Logger.Printf("%v", newDatabaseError("save_resume", err.Error()))
		}
	}
}

// SearchJobs 按关键词和地点搜索职位，并记录搜索历史
func (w *Workflow) SearchJobs(ctx context.Context, userID uint, query, location string) []types.JobPosting {
	jobs := w.components.Catalog.Search(query, location)

	if w.components.Storage != nil && w.components.Storage.MySQL != nil {
		if err := w.components.Storage.MySQL.SaveSearchHistory(ctx, userID, query, location, len(jobs)); err != nil {
			w.settings.Logger.Printf("%v", newDatabaseError("save_search", err.Error()))
		}
	}
	return jobs
}

// RankJobs 对职位列表按与档案的相似度排序，返回前k条。
// 索引构建失败时降级为按目录顺序返回，不报错。
func (w *Workflow) RankJobs(ctx context.Context, jobs []types.JobPosting, profile *types.ResumeProfile, k int) ([]types.JobPosting, ranker.RankOutcome) {
	if k <= 0 {
		k = w.settings.DefaultTopK
	}

	r := ranker.NewRanker(w.components.Embedder, jobs, ranker.WithRankerLogger(w.settings.Logger))
	idx, err := r.BuildIndex(ctx)
	if err != nil {
		w.settings.Logger.Printf("索引构建失败，降级返回目录顺序: %v", err)
		return r.FindSimilar(ctx, nil, profile, k)
	}
	return r.FindSimilar(ctx, idx, profile, k)
}

// GenerateCoverLetter 为指定职位生成求职信。
// 职位不存在返回 ErrJobNotFound；生成本身不会失败，最坏情况是模板兜底文本。
func (w *Workflow) GenerateCoverLetter(ctx context.Context, jobID int, profile *types.ResumeProfile) (string, *types.JobPosting, error) {
	job, err := w.components.Catalog.GetJob(jobID)
	if err != nil {
		return "", nil, fmt.Errorf("%w: id=%d", ErrJobNotFound, jobID)
	}
	return w.components.Letters.Generate(ctx, job, profile), job, nil
}

// ApplyToJob 在招聘平台上投递指定职位并记录投递。
// 同一职位重复投递返回 ErrAlreadyApplied，平台流程失败返回 ErrSubmissionFailed。
func (w *Workflow) ApplyToJob(ctx context.Context, userID uint, jobID int, resumePath, coverLetter string) error {
	job, err := w.components.Catalog.GetJob(jobID)
	if err != nil {
		return fmt.Errorf("%w: id=%d", ErrJobNotFound, jobID)
	}

	if w.components.Storage != nil && w.components.Storage.MySQL != nil {
		applied, err := w.components.Storage.MySQL.HasApplied(ctx, userID, jobID)
		if err != nil {
			return newDatabaseError("check_applied", err.Error())
		}
		if applied {
			return ErrAlreadyApplied
		}
	}

	if w.components.Agent != nil {
		if err := w.components.Agent.Apply(ctx, job, resumePath, coverLetter); err != nil {
			return newSubmissionError(err.Error())
		}
	}

	if w.components.Storage != nil && w.components.Storage.MySQL != nil {
		app := &models.JobApplication{
			UserID:      userID,
			JobID:       job.ID,
			JobTitle:    job.Title,
			Company:     job.Company,
			Platform:    string(job.Platform),
			Status:      string(types.StatusApplied),
			CoverLetter: coverLetter,
			ResumePath:  resumePath,
		}
		if err := w.components.Storage.MySQL.AddJobApplication(ctx, app); err != nil {
			return newDatabaseError("save_application", err.Error())
		}
	}
	return nil
}

// ListApplications 返回用户的投递记录，最近的在前
func (w *Workflow) ListApplications(ctx context.Context, userID uint) ([]models.JobApplication, error) {
	if w.components.Storage == nil || w.components.Storage.MySQL == nil {
		return nil, newDatabaseError("list_applications", "存储未初始化")
	}
	return w.components.Storage.MySQL.ListApplications(ctx, userID)
}

// UpdateApplicationStatus 更新投递状态，重复设置同一状态是幂等操作
func (w *Workflow) UpdateApplicationStatus(ctx context.Context, applicationID uint, status types.ApplicationStatus) error {
	if w.components.Storage == nil || w.components.Storage.MySQL == nil {
		return newDatabaseError("update_status", "存储未初始化")
	}
	return w.components.Storage.MySQL.UpdateApplicationStatus(ctx, applicationID, status)
}

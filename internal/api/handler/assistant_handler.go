package handler

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"job-agent-go/internal/config"
	"job-agent-go/internal/logger"
	"job-agent-go/internal/processor"
	"job-agent-go/internal/storage"
	"job-agent-go/internal/storage/models"
	"job-agent-go/internal/types"
)

// AssistantHandler 求职助手处理器，协调简历解析、搜索排序、求职信和投递流程
type AssistantHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	workflow *processor.Workflow
}

// NewAssistantHandler 创建求职助手处理器
func NewAssistantHandler(cfg *config.Config, storage *storage.Storage, workflow *processor.Workflow) *AssistantHandler {
	return &AssistantHandler{
		cfg:      cfg,
		storage:  storage,
		workflow: workflow,
	}
}

// ResumeUploadResponse 简历上传解析响应
type ResumeUploadResponse struct {
	Profile *types.ResumeProfile `json:"profile"`
	Status  string               `json:"status"`
}

// HandleResumeUpload 接收上传的简历文件并解析为结构化档案。
// 上传内容先落到临时文件，按扩展名分发提取器。
func (h *AssistantHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, filename string, userID uint) (*ResumeUploadResponse, error) {
	ext := filepath.Ext(filename)
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("resume-%s%s", uuid.NewString(), ext))

	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return nil, fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmpFile, reader); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	tmpFile.Close()

	profile, err := h.workflow.ParseResume(ctx, userID, tmpPath)
	if err != nil {
		logger.Error().Err(err).Str("filename", filename).Uint("user_id", userID).Msg("解析简历失败")
		return nil, err
	}

	logger.Info().Str("filename", filename).Uint("user_id", userID).Str("name", profile.Name).Msg("简历解析完成")
	return &ResumeUploadResponse{Profile: profile, Status: "PARSED"}, nil
}

// JobSearchRequest 职位搜索请求
type JobSearchRequest struct {
	Query    string `json:"query"`
	Location string `json:"location"`
	TopK     int    `json:"top_k"`
	Rank     bool   `json:"rank"`
}

// JobSearchResponse 职位搜索响应
type JobSearchResponse struct {
	Jobs    []types.JobPosting `json:"jobs"`
	Outcome string             `json:"outcome"`
}

// HandleJobSearch 搜索职位；请求要求排序时按用户最近一次简历档案做相似度排序。
// 没有解析过简历时排序降级为目录顺序。
func (h *AssistantHandler) HandleJobSearch(ctx context.Context, req *JobSearchRequest, userID uint) (*JobSearchResponse, error) {
	jobs := h.workflow.SearchJobs(ctx, userID, req.Query, req.Location)

	if !req.Rank {
		return &JobSearchResponse{Jobs: jobs, Outcome: "unranked"}, nil
	}

	profile := h.latestProfile(ctx, userID)
	ranked, outcome := h.workflow.RankJobs(ctx, jobs, profile, req.TopK)

	logger.Info().
		Str("query", req.Query).
		Str("location", req.Location).
		Int("result_count", len(ranked)).
		Str("outcome", outcome.String()).
		Msg("职位搜索完成")
	return &JobSearchResponse{Jobs: ranked, Outcome: outcome.String()}, nil
}

// latestProfile 取用户最近一次解析的档案，没有时返回Unknown档案
func (h *AssistantHandler) latestProfile(ctx context.Context, userID uint) *types.ResumeProfile {
	if h.storage == nil || h.storage.MySQL == nil {
		return types.UnknownProfile()
	}
	record, err := h.storage.MySQL.GetLatestResumeRecord(ctx, userID)
	if err != nil {
		return types.UnknownProfile()
	}
	profile, err := record.Profile()
	if err != nil {
		logger.Warn().Err(err).Uint("user_id", userID).Msg("档案反序列化失败，使用Unknown档案")
		return types.UnknownProfile()
	}
	return profile
}

// CoverLetterRequest 求职信生成请求
type CoverLetterRequest struct {
	JobID int `json:"job_id"`
}

// CoverLetterResponse 求职信生成响应
type CoverLetterResponse struct {
	JobID       int    `json:"job_id"`
	JobTitle    string `json:"job_title"`
	Company     string `json:"company"`
	CoverLetter string `json:"cover_letter"`
}

// HandleCoverLetter 为指定职位生成求职信
func (h *AssistantHandler) HandleCoverLetter(ctx context.Context, req *CoverLetterRequest, userID uint) (*CoverLetterResponse, error) {
	profile := h.latestProfile(ctx, userID)

	letter, job, err := h.workflow.GenerateCoverLetter(ctx, req.JobID, profile)
	if err != nil {
		return nil, err
	}

	return &CoverLetterResponse{
		JobID:       job.ID,
		JobTitle:    job.Title,
		Company:     job.Company,
		CoverLetter: letter,
	}, nil
}

// ApplyRequest 投递请求
type ApplyRequest struct {
	JobID       int    `json:"job_id"`
	ResumePath  string `json:"resume_path"`
	CoverLetter string `json:"cover_letter"`
}

// ApplyResponse 投递响应
type ApplyResponse struct {
	JobID  int    `json:"job_id"`
	Status string `json:"status"`
}

// HandleApply 投递指定职位。求职信为空时现场生成一封。
func (h *AssistantHandler) HandleApply(ctx context.Context, req *ApplyRequest, userID uint) (*ApplyResponse, error) {
	coverLetter := req.CoverLetter
	if coverLetter == "" {
		profile := h.latestProfile(ctx, userID)
		letter, _, err := h.workflow.GenerateCoverLetter(ctx, req.JobID, profile)
		if err != nil {
			return nil, err
		}
		coverLetter = letter
	}

	if err := h.workflow.ApplyToJob(ctx, userID, req.JobID, req.ResumePath, coverLetter); err != nil {
		logger.Error().Err(err).Int("job_id", req.JobID).Uint("user_id", userID).Msg("投递失败")
		return nil, err
	}

	logger.Info().Int("job_id", req.JobID).Uint("user_id", userID).Msg("投递完成")
	return &ApplyResponse{JobID: req.JobID, Status: string(types.StatusApplied)}, nil
}

// ApplicationListResponse 投递记录列表响应
type ApplicationListResponse struct {
	Applications []models.JobApplication `json:"applications"`
}

// HandleListApplications 返回用户的投递记录，最近的在前
func (h *AssistantHandler) HandleListApplications(ctx context.Context, userID uint) (*ApplicationListResponse, error) {
	apps, err := h.workflow.ListApplications(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ApplicationListResponse{Applications: apps}, nil
}

// UpdateStatusRequest 投递状态更新请求
type UpdateStatusRequest struct {
	ApplicationID uint   `json:"application_id"`
	Status        string `json:"status"`
}

// HandleUpdateStatus 更新投递状态
func (h *AssistantHandler) HandleUpdateStatus(ctx context.Context, req *UpdateStatusRequest) error {
	status := types.ApplicationStatus(req.Status)
	if !status.Valid() {
		return fmt.Errorf("非法的投递状态: %s", req.Status)
	}
	return h.workflow.UpdateApplicationStatus(ctx, req.ApplicationID, status)
}

package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"job-agent-go/internal/types"
)

// ErrUnsupportedPlatform 没有对应投递流程的招聘平台
var ErrUnsupportedPlatform = errors.New("不支持的招聘平台")

// platformSelectors 平台的投递页面选择器集合
type platformSelectors struct {
	applyButton  string
	fileInput    string
	coverLetter  string
	submitButton string
	confirmation string
}

// 各平台的投递流程选择器。平台集合是开放的，新平台加一组选择器即可。
var selectorsByPlatform = map[types.Platform]platformSelectors{
	types.PlatformLinkedIn: {
		applyButton:  `button[data-control-name="jobdetails_topcard_inapply"]`,
		fileInput:    `input[type="file"]`,
		coverLetter:  `textarea[name="coverLetter"]`,
		submitButton: `button[data-control-name="submit_unify"]`,
		confirmation: `.artdeco-inline-feedback--success`,
	},
	types.PlatformIndeed: {
		applyButton:  `button[data-tn-element="apply-button"]`,
		fileInput:    `input[type="file"]`,
		coverLetter:  `textarea[name="coverLetter"]`,
		submitButton: `button[data-tn-element="submit-button"]`,
		confirmation: `.success-message`,
	},
	types.PlatformInternshala: {
		applyButton:  `button[data-tn-element="apply-button"]`,
		fileInput:    `input[type="file"]`,
		coverLetter:  `textarea[name="coverLetter"]`,
		submitButton: `button[data-tn-element="submit-button"]`,
		confirmation: `.success-message`,
	},
}

// jobURL 拼出平台上职位详情页的地址
func jobURL(platform types.Platform, jobID int) (string, error) {
	switch platform {
	case types.PlatformLinkedIn:
		return fmt.Sprintf("https://www.linkedin.com/jobs/view/%d", jobID), nil
	case types.PlatformIndeed:
		return fmt.Sprintf("https://www.indeed.com/viewjob?jk=%d", jobID), nil
	case types.PlatformInternshala:
		return fmt.Sprintf("https://internshala.com/job/%d", jobID), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedPlatform, platform)
	}
}

// JobApplicator 通过无头浏览器驱动招聘平台的投递流程
type JobApplicator struct {
	headless      bool
	actionTimeout time.Duration
	logger        *log.Logger
}

// ApplicatorOption 投递器配置选项
type ApplicatorOption func(*JobApplicator)

// WithHeadless 设置是否无头运行浏览器
func WithHeadless(headless bool) ApplicatorOption {
	return func(a *JobApplicator) {
		a.headless = headless
	}
}

// WithActionTimeout 设置整个投递流程的超时
func WithActionTimeout(timeout time.Duration) ApplicatorOption {
	return func(a *JobApplicator) {
		a.actionTimeout = timeout
	}
}

// WithApplicatorLogger 配置自定义日志记录器
func WithApplicatorLogger(logger *log.Logger) ApplicatorOption {
	return func(a *JobApplicator) {
		a.logger = logger
	}
}

// NewJobApplicator 创建投递器
func NewJobApplicator(options ...ApplicatorOption) *JobApplicator {
	a := &JobApplicator{
		headless:      true,
		actionTimeout: 120 * time.Second,
		logger:        log.New(io.Discard, "", 0),
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Apply 在招聘平台上完成一次投递：打开职位页、上传简历、填求职信、提交并等待确认。
// 平台不在支持集合内返回 ErrUnsupportedPlatform；流程中任何一步失败返回错误，不重试。
func (a *JobApplicator) Apply(ctx context.Context, job *types.JobPosting, resumePath string, coverLetter string) error {
	selectors, ok := selectorsByPlatform[job.Platform]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, job.Platform)
	}

	url, err := jobURL(job.Platform, job.ID)
	if err != nil {
		return err
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", a.headless),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, a.actionTimeout)
	defer cancelTimeout()

	a.logger.Printf("[JobApplicator] 开始投递: platform=%s job_id=%d url=%s", job.Platform, job.ID, url)

	err = chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Click(selectors.applyButton, chromedp.NodeVisible),
		chromedp.WaitVisible(selectors.fileInput),
		chromedp.SetUploadFiles(selectors.fileInput, []string{resumePath}),
		chromedp.SendKeys(selectors.coverLetter, coverLetter),
		chromedp.Click(selectors.submitButton, chromedp.NodeVisible),
		chromedp.WaitVisible(selectors.confirmation),
	)
	if err != nil {
		a.logger.Printf("[JobApplicator] 投递失败: platform=%s job_id=%d err=%v", job.Platform, job.ID, err)
		return fmt.Errorf("平台投递流程失败: %w", err)
	}

	a.logger.Printf("[JobApplicator] 投递成功: platform=%s job_id=%d", job.Platform, job.ID)
	return nil
}

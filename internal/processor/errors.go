package processor

import (
	"errors"
	"fmt"
)

// 工作流各环节的基础错误类型
var (
	ErrResumeUploadFailed = errors.New("上传简历原件失败")
	ErrJobNotFound        = errors.New("职位不存在")
	ErrAlreadyApplied     = errors.New("已投递过该职位")
	ErrSubmissionFailed   = errors.New("平台投递失败")
	ErrDatabaseFailed     = errors.New("数据库操作失败")
)

// WorkflowError 带操作上下文的工作流错误
type WorkflowError struct {
	Op      string
	BaseErr error
	Detail  string
}

func (e *WorkflowError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s): %s", e.BaseErr, e.Op, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s)", e.BaseErr, e.Op)
}

func (e *WorkflowError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *WorkflowError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func newUploadError(detail string) error {
	return &WorkflowError{Op: "upload", BaseErr: ErrResumeUploadFailed, Detail: detail}
}

func newSubmissionError(detail string) error {
	return &WorkflowError{Op: "submit", BaseErr: ErrSubmissionFailed, Detail: detail}
}

func newDatabaseError(op, detail string) error {
	return &WorkflowError{Op: op, BaseErr: ErrDatabaseFailed, Detail: detail}
}

package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"job-agent-go/internal/types"
)

// User 用户凭据表。密码只存bcrypt哈希，明文不落库。
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex:idx_users_username_unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	Email        string    `gorm:"type:varchar(255)"`
	CreatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt    time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

// JobApplication 投递记录表。(user_id, job_id) 唯一，同一职位重复投递是幂等操作。
type JobApplication struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	UserID      uint      `gorm:"not null;index:idx_ja_user_id;uniqueIndex:idx_ja_user_job_unique,priority:1"`
	JobID       int       `gorm:"not null;uniqueIndex:idx_ja_user_job_unique,priority:2"`
	JobTitle    string    `gorm:"type:varchar(255);not null"`
	Company     string    `gorm:"type:varchar(255);not null"`
	Platform    string    `gorm:"type:varchar(50)"`
	Status      string    `gorm:"type:varchar(50);default:'applied';index:idx_ja_status"`
	CoverLetter string    `gorm:"type:text"`
	ResumePath  string    `gorm:"type:varchar(1024)"`
	AppliedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_ja_applied_at"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (JobApplication) TableName() string {
	return "job_applications"
}

// SearchHistory 职位搜索历史表
type SearchHistory struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	UserID      uint      `gorm:"not null;index:idx_sh_user_id"`
	Query       string    `gorm:"type:varchar(255)"`
	Location    string    `gorm:"type:varchar(255)"`
	ResultCount int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_sh_created_at"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (SearchHistory) TableName() string {
	return "search_histories"
}

// ResumeRecord 简历解析记录表。原件存对象存储，这里只留对象键和结构化档案。
type ResumeRecord struct {
	ID               uint           `gorm:"primaryKey;autoIncrement"`
	UserID           uint           `gorm:"not null;index:idx_rr_user_id"`
	OriginalFilename string         `gorm:"type:varchar(255)"`
	ObjectKey        string         `gorm:"type:varchar(1024)"`
	RawTextMD5       string         `gorm:"type:char(32);index:idx_rr_raw_text_md5"`
	ProfileJSON      datatypes.JSON `gorm:"type:json"`
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (ResumeRecord) TableName() string {
	return "resume_records"
}

// ProfileToJSON 将结构化档案序列化为JSON列值
func ProfileToJSON(profile *types.ResumeProfile) (datatypes.JSON, error) {
	bytes, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// Profile 反序列化档案字段，空值返回Unknown档案
func (r *ResumeRecord) Profile() (*types.ResumeProfile, error) {
	if len(r.ProfileJSON) == 0 {
		return types.UnknownProfile(), nil
	}
	var profile types.ResumeProfile
	if err := json.Unmarshal(r.ProfileJSON, &profile); err != nil {
		return nil, err
	}
	profile.Normalize()
	return &profile, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"job-agent-go/internal/config"
	"job-agent-go/internal/storage/models"
	"job-agent-go/internal/tracing"
	"job-agent-go/internal/types"
)

var mysqlTracer = otel.Tracer("job-agent-go/storage/mysql")

// 凭据与投递相关的业务错误
var (
	// ErrInvalidCredentials 用户名不存在或密码不匹配，对外不区分两种情况
	ErrInvalidCredentials = errors.New("用户名或密码错误")

	// ErrUsernameTaken 用户名已被占用
	ErrUsernameTaken = errors.New("用户名已存在")

	// ErrInvalidStatus 非法的投递状态值
	ErrInvalidStatus = errors.New("非法的投递状态")
)

// GormTracingPlugin GORM插件，为数据库操作创建OpenTelemetry追踪点
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

type gormSpanKey struct{}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	// 各操作类型的Before/After回调
	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}
	return nil
}

// before 返回在GORM操作之前执行的回调
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		newCtx, span := p.tracer.Start(ctx, fmt.Sprintf("%s %s", operation, tableName),
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		)
		db.Statement.Context = context.WithValue(newCtx, gormSpanKey{}, span)
	}
}

// after 返回在GORM操作之后执行的回调
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil {
			if errors.Is(db.Error, gorm.ErrRecordNotFound) {
				// 未命中是业务正常分支，不计为错误
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin 创建GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer: mysqlTracer,
		dbName: dbName,
	}
}

// MySQL 提供凭据、投递记录和搜索历史的关系存储
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		TranslateError:                           true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{db: db, cfg: cfg}

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if err := m.autoMigrateSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	// 迁移期间静默SQL日志
	silentDB := m.db.Session(&gorm.Session{Logger: logger.Default.LogMode(logger.Silent)})
	return silentDB.AutoMigrate(
		&models.User{},
		&models.JobApplication{},
		&models.SearchHistory{},
		&models.ResumeRecord{},
	)
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return sqlDB.Close()
}

// CreateUser 注册新用户。密码用bcrypt加盐哈希后存储。
func (m *MySQL) CreateUser(ctx context.Context, username, password, email string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("生成密码哈希失败: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
	}
	if err := m.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("创建用户失败: %w", err)
	}
	return user, nil
}

// AuthenticateUser 校验用户名和密码。
// 用户不存在和密码错误统一返回 ErrInvalidCredentials，不向外泄露区别。
func (m *MySQL) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	var user models.User
	err := m.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("查询用户失败: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// AddJobApplication 追加一条投递记录。
// (user_id, job_id) 冲突时不报错也不覆盖，重复投递同一职位是幂等操作。
func (m *MySQL) AddJobApplication(ctx context.Context, app *models.JobApplication) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.AddJobApplication",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.sql.table", "job_applications"),
		attribute.Int("job.id", app.JobID),
	)

	if app.Status == "" {
		app.Status = string(types.StatusApplied)
	}
	if app.AppliedAt.IsZero() {
		app.AppliedAt = time.Now()
	}

	err := m.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "job_id"}},
			DoNothing: true,
		}).Create(app).Error
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存投递记录失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// HasApplied 判断用户是否已投递过指定职位
func (m *MySQL) HasApplied(ctx context.Context, userID uint, jobID int) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("查询投递记录失败: %w", err)
	}
	return count > 0, nil
}

// UpdateApplicationStatus 按ID更新投递状态。
// 状态已是目标值时再次更新不报错，操作幂等。
func (m *MySQL) UpdateApplicationStatus(ctx context.Context, applicationID uint, status types.ApplicationStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	result := m.db.WithContext(ctx).Model(&models.JobApplication{}).
		Where("id = ?", applicationID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("更新投递状态失败: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// 可能记录不存在，也可能状态未变化；区分二者需要再查一次
		var count int64
		if err := m.db.WithContext(ctx).Model(&models.JobApplication{}).
			Where("id = ?", applicationID).Count(&count).Error; err != nil {
			return fmt.Errorf("查询投递记录失败: %w", err)
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// ListApplications 返回用户的全部投递记录，最近投递的在前
func (m *MySQL) ListApplications(ctx context.Context, userID uint) ([]models.JobApplication, error) {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.ListApplications",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.sql.table", "job_applications"),
	)

	var apps []models.JobApplication
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("查询投递记录失败: %w", err)
	}
	span.SetAttributes(attribute.Int("result.count", len(apps)))
	span.SetStatus(codes.Ok, "")
	return apps, nil
}

// SaveSearchHistory 记录一次职位搜索
func (m *MySQL) SaveSearchHistory(ctx context.Context, userID uint, query, location string, resultCount int) error {
	ctx, span := mysqlTracer.Start(ctx, "MySQL.SaveSearchHistory",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		semconv.DBSystemMySQL,
		attribute.String("db.sql.table", "search_histories"),
		attribute.String("search.query", tracing.SafeAttributeValue("query", query, tracing.DefaultMaxLength)),
		attribute.Int("search.result_count", resultCount),
	)

	record := &models.SearchHistory{
		UserID:      userID,
		Query:       query,
		Location:    location,
		ResultCount: resultCount,
	}
	if err := m.db.WithContext(ctx).Create(record).Error; err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return fmt.Errorf("保存搜索历史失败: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// SaveResumeRecord 保存简历解析记录
func (m *MySQL) SaveResumeRecord(ctx context.Context, record *models.ResumeRecord) error {
	if err := m.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("保存简历记录失败: %w", err)
	}
	return nil
}

// GetLatestResumeRecord 返回用户最近一次的简历解析记录
func (m *MySQL) GetLatestResumeRecord(ctx context.Context, userID uint) (*models.ResumeRecord, error) {
	var record models.ResumeRecord
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"

	"job-agent-go/internal/api/handler"
	"job-agent-go/internal/api/router"
	"job-agent-go/internal/automation"
	"job-agent-go/internal/catalog"
	"job-agent-go/internal/config"
	"job-agent-go/internal/llm"
	appCoreLogger "job-agent-go/internal/logger"
	"job-agent-go/internal/parser"
	"job-agent-go/internal/processor"
	"job-agent-go/internal/storage"
)

var (
	version     = "1.0.0"        //nolint:gochecknoglobals
	serviceName = "job-agent-go" //nolint:gochecknoglobals
)

// @title Job Agent API
// @version 1.0
// @description 个人求职助手服务的API文档。
// @BasePath /api/v1
func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	// .env中的LLM_API_KEY等变量在LoadConfig里覆盖文件配置
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := initTracing(ctx)
	if err != nil {
		glog.Warnf("初始化链路追踪失败，追踪已禁用: %v", err)
	} else if shutdownTracing != nil {
		defer func() {
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelShutdown()
			if err := shutdownTracing(shutdownCtx); err != nil {
				glog.Warnf("关闭链路追踪失败: %v", err)
			}
		}()
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	debugMode := cfg.Logger.Level == "debug"
	componentLogger := func(prefix string) *log.Logger {
		if debugMode {
			return log.New(os.Stderr, prefix, log.LstdFlags|log.Lshortfile)
		}
		return log.New(io.Discard, "", 0)
	}

	llmChatModel, err := llm.NewOpenAIChatModel(&cfg.LLM)
	if err != nil {
		glog.Fatalf("初始化LLM客户端失败: %v", err)
	}
	if debugMode {
		llmChatModel.SetLogger(componentLogger("[LLM] "))
	}
	glog.Infof("LLM客户端初始化成功 (模型: %s)", cfg.LLM.Model)

	textExtractor, err := parser.NewDocumentTextExtractor(ctx,
		parser.WithExtractorLogger(componentLogger("[Extractor] ")))
	if err != nil {
		glog.Fatalf("初始化文档文本提取器失败: %v", err)
	}
	glog.Info("文档文本提取器初始化成功")

	resumeExtractor := parser.NewLLMResumeExtractor(llmChatModel,
		parser.WithResumeExtractorLogger(componentLogger("[ResumeExtractor] ")))
	glog.Info("简历档案抽取器初始化成功")

	coverLetterGen := parser.NewCoverLetterGenerator(llmChatModel,
		parser.WithCoverLetterLogger(componentLogger("[CoverLetter] ")))
	glog.Info("求职信生成器初始化成功")

	hashEmbedder := parser.NewHashEmbedder(parser.WithDimensions(cfg.Embedding.Dimensions))
	glog.Infof("哈希嵌入器初始化成功 (维度: %d)", cfg.Embedding.Dimensions)

	jobCatalog := catalog.NewMockCatalog(catalog.WithCatalogLogger(componentLogger("[Catalog] ")))
	glog.Info("职位目录初始化成功")

	applicator := automation.NewJobApplicator(
		automation.WithHeadless(cfg.Automation.Headless),
		automation.WithActionTimeout(config.GetDuration(cfg.Automation.ActionTimeout, 30*time.Second)),
		automation.WithApplicatorLogger(componentLogger("[Applicator] ")),
	)
	glog.Info("投递执行器初始化成功")

	workflow, err := processor.NewWorkflow(processor.Components{
		Extractor: textExtractor,
		Profiler:  resumeExtractor,
		Catalog:   jobCatalog,
		Letters:   coverLetterGen,
		Agent:     applicator,
		Embedder:  hashEmbedder,
		Storage:   storageManager,
	}, processor.Settings{
		DefaultTopK: 5,
		Logger:      log.New(appCoreLogger.Logger, "[Workflow] ", log.LstdFlags|log.Lshortfile),
	})
	if err != nil {
		glog.Fatalf("初始化工作流失败: %v", err)
	}
	glog.Info("工作流编排器初始化成功")

	authHandler := handler.NewAuthHandler(storageManager)
	assistantHandler := handler.NewAssistantHandler(cfg, storageManager, workflow)
	glog.Info("Handler初始化成功")

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, authHandler, assistantHandler)
	glog.Info("HTTP路由注册成功")

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Fatalf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initTracing 初始化OpenTelemetry追踪。
// 未配置OTLP端点时跳过，存储层创建的span会走默认的no-op provider。
func initTracing(ctx context.Context) (func(context.Context) error, error) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return nil, nil
	}

	exporter, err := otlptracegrpc.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("创建OTLP导出器失败: %w", err)
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
		semconv.ServiceVersion(version),
	))
	if err != nil {
		return nil, fmt.Errorf("构建资源属性失败: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// initLogger 初始化全局zerolog并把Hertz的日志接到同一个输出上
func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	appCoreLogger.Logger = appCoreLogger.Logger.With().
		Str("app", serviceName).
		Str("version", version).
		Logger()

	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	}
}

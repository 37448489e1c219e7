package router

import (
	"context"
	"errors"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"job-agent-go/internal/api/handler"
	"job-agent-go/internal/processor"
	"job-agent-go/internal/storage"
)

// 请求上下文中存放已鉴权用户ID的键
const userIDKey = "user_id"

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, authHandler *handler.AuthHandler, assistantHandler *handler.AssistantHandler) {
	api := h.Group("/api/v1")

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	// 注册与登录不需要会话
	api.POST("/auth/register", func(c context.Context, ctx *app.RequestContext) {
		var req handler.RegisterRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求格式错误"})
			return
		}
		resp, err := authHandler.HandleRegister(c, &req)
		if err != nil {
			if errors.Is(err, storage.ErrUsernameTaken) {
				ctx.JSON(consts.StatusConflict, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.POST("/auth/login", func(c context.Context, ctx *app.RequestContext) {
		var req handler.LoginRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求格式错误"})
			return
		}
		resp, err := authHandler.HandleLogin(c, &req)
		if err != nil {
			if errors.Is(err, storage.ErrInvalidCredentials) {
				ctx.JSON(consts.StatusUnauthorized, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 业务接口都在会话保护下
	protected := api.Group("/", keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, token string) (bool, error) {
			userID, err := authHandler.ValidateSession(c, token)
			if err != nil {
				return false, err
			}
			ctx.Set(userIDKey, userID)
			return true, nil
		}),
	))

	protected.POST("/auth/logout", func(c context.Context, ctx *app.RequestContext) {
		token, _ := ctx.Get("token")
		if tokenStr, ok := token.(string); ok {
			_ = authHandler.HandleLogout(c, tokenStr)
		}
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	protected.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := assistantHandler.HandleResumeUpload(c, file, fileHeader.Filename, mustUserID(ctx))
		if err != nil {
			ctx.JSON(consts.StatusUnprocessableEntity, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	protected.POST("/jobs/search", func(c context.Context, ctx *app.RequestContext) {
		var req handler.JobSearchRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求格式错误"})
			return
		}
		resp, err := assistantHandler.HandleJobSearch(c, &req, mustUserID(ctx))
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	protected.POST("/jobs/cover-letter", func(c context.Context, ctx *app.RequestContext) {
		var req handler.CoverLetterRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求格式错误"})
			return
		}
		resp, err := assistantHandler.HandleCoverLetter(c, &req, mustUserID(ctx))
		if err != nil {
			if errors.Is(err, processor.ErrJobNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	protected.POST("/jobs/apply", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ApplyRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求格式错误"})
			return
		}
		resp, err := assistantHandler.HandleApply(c, &req, mustUserID(ctx))
		if err != nil {
			switch {
			case errors.Is(err, processor.ErrJobNotFound):
				ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
			case errors.Is(err, processor.ErrAlreadyApplied):
				ctx.JSON(consts.StatusConflict, utils.H{"error": err.Error()})
			default:
				ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			}
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	protected.GET("/applications", func(c context.Context, ctx *app.RequestContext) {
		resp, err := assistantHandler.HandleListApplications(c, mustUserID(ctx))
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	protected.PUT("/applications/status", func(c context.Context, ctx *app.RequestContext) {
		var req handler.UpdateStatusRequest
		if err := ctx.BindAndValidate(&req); err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求格式错误"})
			return
		}
		if err := assistantHandler.HandleUpdateStatus(c, &req); err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// mustUserID 取出会话中间件写入的用户ID，未鉴权的请求到不了这里
func mustUserID(ctx *app.RequestContext) uint {
	val, _ := ctx.Get(userIDKey)
	if userID, ok := val.(uint); ok {
		return userID
	}
	return 0
}

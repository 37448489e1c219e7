package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// AuthModulePrefix 认证模块
	AuthModulePrefix = "auth"

	// EntitySession 登录会话实体
	EntitySession = "session"

	// KeySessionPrefix 登录会话键前缀 (STRING, 值为用户ID)
	// 格式: app:auth:session:{token}
	KeySessionPrefix = AppPrefix + ":" + AuthModulePrefix + ":" + EntitySession + ":"
)

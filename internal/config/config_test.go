package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadConfigFromFile 测试从YAML文件加载配置并补默认值
func TestLoadConfigFromFile(t *testing.T) {
	content := `
llm:
  api_key: "test-key"
  api_url: "https://example.com/v1/chat/completions"
  model: "test-model"
server:
  address: ":9090"
mysql:
  host: "db.internal"
  port: 3306
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "加载配置不应失败")

	assert.Equal(t, "test-key", cfg.LLM.APIKey, "LLM密钥应从文件读取")
	assert.Equal(t, ":9090", cfg.Server.Address, "服务地址应从文件读取")
	assert.Equal(t, "db.internal", cfg.MySQL.Host, "MySQL主机应从文件读取")

	// 未设置的字段应有默认值
	assert.Equal(t, 100, cfg.Embedding.Dimensions, "嵌入维度应有默认值")
	assert.Equal(t, "60s", cfg.LLM.RequestTimeout, "LLM超时应有默认值")
	assert.Equal(t, 120, cfg.Redis.SessionTTLMinutes, "会话TTL应有默认值")
	assert.Equal(t, "resumes", cfg.MinIO.ResumeBucket, "简历桶名应有默认值")
}

// TestLoadConfigEnvOverride 测试环境变量覆盖敏感配置
func TestLoadConfigEnvOverride(t *testing.T) {
	content := `
llm:
  api_key: "file-key"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	t.Setenv("LLM_API_KEY", "env-key")

	cfg, err := LoadConfig(path)
	require.NoError(t, err, "加载配置不应失败")
	assert.Equal(t, "env-key", cfg.LLM.APIKey, "环境变量应覆盖文件中的密钥")
}

// TestLoadConfigMissingFileInTest 测试测试环境下缺失配置文件时回退到默认配置
func TestLoadConfigMissingFileInTest(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err, "测试环境下应回退到默认配置")
	require.NotNil(t, cfg)
	assert.Equal(t, ":8080", cfg.Server.Address, "默认配置应有服务地址")
	assert.Equal(t, 100, cfg.Embedding.Dimensions, "默认配置应有嵌入维度")
}

// TestGetDuration 测试时长字符串解析及默认值回退
func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration("30s", time.Minute), "合法时长应正确解析")
	assert.Equal(t, time.Minute, GetDuration("", time.Minute), "空串应返回默认值")
	assert.Equal(t, time.Minute, GetDuration("not-a-duration", time.Minute), "非法时长应返回默认值")
}

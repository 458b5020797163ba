package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("最小配置使用默认轮转参数", func(t *testing.T) {
		log, err := NewLogger(Config{Level: "info"})
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("非法级别回退到info", func(t *testing.T) {
		log, err := NewLogger(Config{Level: "not-a-level"})
		require.NoError(t, err)
		require.NotNil(t, log)
	})

	t.Run("写入日志文件", func(t *testing.T) {
		logFile := filepath.Join(t.TempDir(), "logs", "app.log")

		log, err := NewLogger(Config{Level: "info", LogFile: logFile})
		require.NoError(t, err)

		log.Info("startup")
		_ = log.Sync()

		info, err := os.Stat(logFile)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	})
}

package compression

import (
	"compress/flate"

	"github.com/gobwas/ws/wsflate"
)

// Config 为客户端连接的 permessage-deflate 配置。
type Config struct {
	Enabled                 bool `mapstructure:"enabled"`
	ServerMaxWindowBits     int  `mapstructure:"server_max_window_bits"`
	ServerNoContextTakeover bool `mapstructure:"server_no_context_takeover"`
	ClientMaxWindowBits     int  `mapstructure:"client_max_window_bits"`
	ClientNoContextTakeover bool `mapstructure:"client_no_context_takeover"`
	Level                   int  `mapstructure:"level"`
}

// ToParameters 将 Config 转换为 wsflate 参数。
// 注：
//
//	写端每条消息都会重置压缩器，所以服务端总是声明 no_context_takeover。
func (cfg Config) ToParameters() wsflate.Parameters {
	return wsflate.Parameters{
		ServerMaxWindowBits:     wsflate.WindowBits(cfg.ServerMaxWindowBits),
		ServerNoContextTakeover: true,
		ClientMaxWindowBits:     wsflate.WindowBits(cfg.ClientMaxWindowBits),
		ClientNoContextTakeover: cfg.ClientNoContextTakeover,
	}
}

// CompressLevel 返回合法的压缩等级，非法值回退到 flate.BestSpeed。
func (cfg Config) CompressLevel() int {
	if cfg.Level < flate.HuffmanOnly || cfg.Level > flate.BestCompression || cfg.Level == flate.NoCompression {
		return flate.BestSpeed
	}
	return cfg.Level
}

// State 为压缩状态，包含协商后的扩展信息和压缩参数。
type State struct {
	Enabled bool

	Ext    *wsflate.Extension
	Params wsflate.Parameters

	// Level 为写端的压缩等级。
	Level int
}

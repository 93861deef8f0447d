package logger

// Format 日志格式
type Format string

const (
	JSONFormat    Format = "json"
	ConsoleFormat Format = "console"
)

// Config 日志配置
type Config struct {
	Level  Level  `mapstructure:"level"`  // 日志级别（默认 info）
	Format Format `mapstructure:"format"` // json/console（默认 json）
	Name   string `mapstructure:"name"`   // logger 名称

	Console bool          `mapstructure:"console"` // 输出到 stdout
	File    string        `mapstructure:"file"`    // 输出到文件
	Rotate  *RotateConfig `mapstructure:"rotate"`  // 轮转输出（nil 不启用）

	Sampling *SamplingConfig `mapstructure:"sampling"` // 采样（nil 不采样）

	EnableCaller     bool `mapstructure:"caller"`     // 记录调用位置
	EnableStacktrace bool `mapstructure:"stacktrace"` // error 及以上记录堆栈

	Hooks []Hook `mapstructure:"-"`
}

// RotateConfig 文件轮转配置
type RotateConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`    // MB，默认 100
	MaxAge     int    `mapstructure:"max_age"`     // 天，默认 30
	MaxBackups int    `mapstructure:"max_backups"` // 默认 10
	Compress   bool   `mapstructure:"compress"`
}

// SamplingConfig 采样配置：每秒前 Initial 条必记，之后每 Thereafter 条记 1 条
type SamplingConfig struct {
	Initial    int `mapstructure:"initial"`
	Thereafter int `mapstructure:"thereafter"`
}

func (c *Config) setDefaults() {
	if c.Format != ConsoleFormat {
		c.Format = JSONFormat
	}
	if !c.Console && c.File == "" && c.Rotate == nil {
		c.Console = true
	}
	if r := c.Rotate; r != nil {
		if r.MaxSize == 0 {
			r.MaxSize = 100
		}
		if r.MaxAge == 0 {
			r.MaxAge = 30
		}
		if r.MaxBackups == 0 {
			r.MaxBackups = 10
		}
	}
	if s := c.Sampling; s != nil {
		if s.Initial == 0 {
			s.Initial = 100
		}
		if s.Thereafter == 0 {
			s.Thereafter = 100
		}
	}
}

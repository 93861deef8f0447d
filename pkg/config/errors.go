package config

import "github.com/tokmz/guilded/pkg/errors"

// 3000 段错误码：配置相关
var (
	// ErrConfigNotFound 配置文件未找到
	ErrConfigNotFound = errors.New(3001, "config: file not found")
	// ErrConfigReadFailed 配置读取失败
	ErrConfigReadFailed = errors.New(3002, "config: read failed")
	// ErrConfigInvalid 配置内容无效
	ErrConfigInvalid = errors.New(3003, "config: invalid settings")
)

package config

// Option 配置选项函数
type Option func(*Config)

// WithConfigFile 指定配置文件完整路径
func WithConfigFile(path string) Option {
	return func(c *Config) { c.configFile = path }
}

// WithConfigName 设置配置文件名（不含扩展名）
func WithConfigName(name string) Option {
	return func(c *Config) { c.configName = name }
}

// WithConfigType 设置配置文件类型（yaml/json/toml）
func WithConfigType(typ string) Option {
	return func(c *Config) { c.configType = typ }
}

// WithConfigPaths 设置配置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(c *Config) { c.configPaths = paths }
}

// WithAutoWatch 加载后自动监控配置文件
func WithAutoWatch(watch bool) Option {
	return func(c *Config) { c.autoWatch = watch }
}

// WithOnChange 配置文件变更后回调，参数为重新解析的 Settings
func WithOnChange(fn func(*Settings)) Option {
	return func(c *Config) { c.onChange = fn }
}

// WithOnError 监控过程中的错误回调
func WithOnError(fn func(error)) Option {
	return func(c *Config) { c.onError = fn }
}

// WithEnvPrefix 设置环境变量前缀（默认 GUILDED）
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) { c.envPrefix = prefix }
}

// WithDefaults 覆盖默认值
func WithDefaults(defaults map[string]any) Option {
	return func(c *Config) {
		for k, v := range defaults {
			c.defaults[k] = v
		}
	}
}

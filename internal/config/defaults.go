package config

const (
	defaultUploadDir      = "~/.local/share/subforge/uploads"
	defaultOutputDir      = "~/.local/share/subforge/output"
	defaultLogDir         = "~/.local/share/subforge/logs"
	defaultAPIBind        = "127.0.0.1:7519"
	defaultWhisperBinary  = "whisper"
	defaultFFmpegBinary   = "ffmpeg"
	defaultWhisperModel   = "large-v3-turbo"
	defaultLanguage       = "Chinese"
	defaultLLMBaseURL     = "https://api.deepseek.com/v1"
	defaultLLMModel       = "deepseek-chat"
	defaultLLMTimeout     = 120
	defaultWorkers        = 2
	defaultMaxTasksFactor = 3
	defaultSceneWorkers   = 3
	defaultSceneGap       = 2.0
	defaultMinSceneSize   = 3
	defaultMaxSceneSize   = 15
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			UploadDir: defaultUploadDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Whisper: Whisper{
			Binary:   defaultWhisperBinary,
			Model:    defaultWhisperModel,
			Language: defaultLanguage,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Processing: Processing{
			Workers:        defaultWorkers,
			MaxTasksFactor: defaultMaxTasksFactor,
			SceneWorkers:   defaultSceneWorkers,
			SceneGap:       defaultSceneGap,
			MinSceneSize:   defaultMinSceneSize,
			MaxSceneSize:   defaultMaxSceneSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

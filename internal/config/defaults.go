package config

const (
	defaultMediaRoot       = "~/.local/share/texgallery/media"
	defaultOutputDir       = "~/.local/share/texgallery/exports"
	defaultLogDir          = "~/.local/share/texgallery/logs"
	defaultCacheDir        = "~/.cache/texgallery"
	defaultJPGList         = "jpg.txt"
	defaultPNGList         = "png.txt"
	defaultAudioList       = "audio.txt"
	defaultFetchTimeout    = 30
	defaultArchivePrefix   = "texture-assets"
	defaultJPEGQuality     = 92
	defaultPlaceholderSize = 1024
	defaultPlaceholderGrey = "#808080"
	defaultModProduct      = "mod"
	defaultModSubsystem    = "textures"
	defaultModPackPrefix   = "custom-pack"
	defaultAPIBind         = "127.0.0.1:7788"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	// MaxImageDimension bounds generated and decoded image sides.
	MaxImageDimension = 8192
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaRoot: defaultMediaRoot,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir,
		},
		Catalog: Catalog{
			JPGList:   defaultJPGList,
			PNGList:   defaultPNGList,
			AudioList: defaultAudioList,
		},
		Media: Media{
			FetchTimeout: defaultFetchTimeout,
			Prefetch:     true,
		},
		Export: Export{
			ArchivePrefix:   defaultArchivePrefix,
			Timestamped:     true,
			JPEGQuality:     defaultJPEGQuality,
			PlaceholderSize: defaultPlaceholderSize,
			PlaceholderGrey: defaultPlaceholderGrey,
		},
		ModPack: ModPack{
			Product:          defaultModProduct,
			Subsystem:        defaultModSubsystem,
			ArchivePrefix:    defaultModPackPrefix,
			IncludeUnchanged: true,
		},
		API: API{
			Bind: defaultAPIBind,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

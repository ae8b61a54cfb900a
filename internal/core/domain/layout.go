package domain

const (
	// ConfigFileName is the name of the optional project configuration file.
	ConfigFileName = "kiln.yaml"

	// DefaultSourceDir is the source root used when no configuration overrides it.
	DefaultSourceDir = "src"

	// DefaultOutputDir is the output root used when no configuration overrides it.
	DefaultOutputDir = "dist"

	// DefaultMinSuffix is inserted before the extension of minified stylesheets.
	DefaultMinSuffix = ".min"

	// DefaultBundleName is the file name of the script bundle.
	DefaultBundleName = "main.min.js"

	// DefaultJPEGQuality is the lossy quality used when re-encoding JPEG images.
	DefaultJPEGQuality = 80

	// DefaultIndent is the number of spaces the stylesheet beautifier indents with.
	DefaultIndent = 4

	// DefaultSassBinary is the Dart Sass executable looked up on PATH.
	DefaultSassBinary = "sass"

	// DefaultHost is the interface the dev server binds to.
	DefaultHost = "localhost"

	// DefaultPort is the dev server port.
	DefaultPort = 3000

	// LiveReloadPath is the WebSocket endpoint browsers connect to.
	LiveReloadPath = "/__kiln/livereload"

	// LiveReloadScriptPath serves the client script injected into HTML pages.
	LiveReloadScriptPath = "/__kiln/livereload.js"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// SpanFilesAttribute is the span attribute holding the number of files a task wrote.
const SpanFilesAttribute = "kiln.files"

// CleanTaskName is the name of the task that removes the output root.
const CleanTaskName = "clean"

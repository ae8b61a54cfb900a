package domain

import "path/filepath"

// Browser is one entry of the vendor-prefix support matrix: an engine name
// (chrome, edge, firefox, safari, ios, opera) and its oldest supported version.
type Browser struct {
	Name    string
	Version string
}

// StyleOptions configures the style task.
type StyleOptions struct {
	// MinSuffix is inserted before .css in the minified copy.
	MinSuffix string
	// Indent is the beautifier indentation width in spaces.
	Indent int
	// SassBinary is the Dart Sass executable.
	SassBinary string
}

// ScriptOptions configures the script bundle task.
type ScriptOptions struct {
	// Bundle is the output file name of the bundle.
	Bundle string
	// Minify enables bundle minification.
	Minify bool
	// SourceMap writes a linked source map next to the bundle.
	SourceMap bool
}

// ImageOptions configures the image task.
type ImageOptions struct {
	// JPEGQuality is the lossy quality (1-100) for JPEG re-encoding.
	JPEGQuality int
}

// ServerOptions configures the development server.
type ServerOptions struct {
	Host string
	Port int
}

// Config is the resolved project configuration.
type Config struct {
	// Root is the workspace directory relative paths resolve against.
	Root string
	// Registry holds the category path entries.
	Registry *Registry
	// Browsers is the vendor-prefix support matrix.
	Browsers []Browser
	Styles   StyleOptions
	Scripts  ScriptOptions
	Images   ImageOptions
	Server   ServerOptions
}

// DefaultPathEntries returns the built-in category layout.
func DefaultPathEntries() []PathEntry {
	const images = "assets/images/**/*.{jpeg,jpg,png,svg,gif,ico,webp,webmanifest,xml,json}"
	const fonts = "assets/fonts/**/*.{eot,woff,woff2,ttf,svg}"

	return []PathEntry{
		{Category: CategoryMarkup, SourceGlob: "*.html", WatchGlob: "**/*.html", OutputDir: ""},
		{Category: CategoryStyle, SourceGlob: "assets/scss/*.scss", WatchGlob: "assets/scss/**/*.scss", OutputDir: "assets/css"},
		{Category: CategoryScript, SourceGlob: "assets/js/*.js", WatchGlob: "assets/js/**/*.js", OutputDir: "assets/js"},
		{Category: CategoryImage, SourceGlob: images, WatchGlob: images, OutputDir: "assets/images"},
		{Category: CategoryFont, SourceGlob: fonts, WatchGlob: fonts, OutputDir: "assets/fonts"},
	}
}

// DefaultBrowsers approximates "last 3 versions" of the major engines.
func DefaultBrowsers() []Browser {
	return []Browser{
		{Name: "chrome", Version: "128"},
		{Name: "edge", Version: "128"},
		{Name: "firefox", Version: "128"},
		{Name: "safari", Version: "16"},
		{Name: "ios", Version: "16"},
		{Name: "opera", Version: "112"},
	}
}

// DefaultConfig returns the built-in configuration rooted at root.
func DefaultConfig(root string) (*Config, error) {
	registry, err := NewRegistry(
		filepath.Join(root, DefaultSourceDir),
		filepath.Join(root, DefaultOutputDir),
		DefaultPathEntries(),
	)
	if err != nil {
		return nil, err
	}

	return &Config{
		Root:     root,
		Registry: registry,
		Browsers: DefaultBrowsers(),
		Styles: StyleOptions{
			MinSuffix:  DefaultMinSuffix,
			Indent:     DefaultIndent,
			SassBinary: DefaultSassBinary,
		},
		Scripts: ScriptOptions{
			Bundle: DefaultBundleName,
		},
		Images: ImageOptions{
			JPEGQuality: DefaultJPEGQuality,
		},
		Server: ServerOptions{
			Host: DefaultHost,
			Port: DefaultPort,
		},
	}, nil
}

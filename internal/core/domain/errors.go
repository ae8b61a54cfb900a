package domain

import "go.trai.ch/zerr"

var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrUnknownCategory is returned for a category name outside markup, style, script, image and font.
	ErrUnknownCategory = zerr.New("unknown asset category")

	// ErrDuplicatePathEntry is returned when a category is configured twice.
	ErrDuplicatePathEntry = zerr.New("duplicate path entry")

	// ErrMissingPathEntry is returned when a category has no path entry.
	ErrMissingPathEntry = zerr.New("missing path entry")

	// ErrEmptyGlob is returned when a path entry has no source glob.
	ErrEmptyGlob = zerr.New("empty source glob")

	// ErrInvalidGlob is returned when a glob pattern cannot be compiled.
	ErrInvalidGlob = zerr.New("invalid glob pattern")

	// ErrOutputPathOutsideRoot is returned when an output path is outside the output root.
	ErrOutputPathOutsideRoot = zerr.New("output path is outside output root")

	// ErrUnsafeClean is returned when the output root overlaps the source tree or workspace root.
	ErrUnsafeClean = zerr.New("refusing to clean a directory containing sources")

	// ErrInvalidPort is returned when the server port is outside 0-65535.
	ErrInvalidPort = zerr.New("invalid server port")

	// ErrInvalidQuality is returned when the JPEG quality is outside 1-100.
	ErrInvalidQuality = zerr.New("invalid jpeg quality, expected 1-100")

	// ErrMissingConfig is returned when a component needs a loaded configuration.
	ErrMissingConfig = zerr.New("missing configuration")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrBuildExecutionFailed is returned when one or more tasks of a run fail.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")

	// ErrSourceScanFailed is returned when the source tree cannot be walked.
	ErrSourceScanFailed = zerr.New("failed to scan source files")

	// ErrFileReadFailed is returned when a source file cannot be read.
	ErrFileReadFailed = zerr.New("failed to read source file")

	// ErrFileWriteFailed is returned when an output file cannot be written.
	ErrFileWriteFailed = zerr.New("failed to write output file")

	// ErrCleanFailed is returned when the output root cannot be removed.
	ErrCleanFailed = zerr.New("failed to clean output directory")

	// ErrStyleCompileFailed is returned when the Sass compiler rejects a stylesheet.
	ErrStyleCompileFailed = zerr.New("failed to compile stylesheet")

	// ErrStyleParseFailed is returned when compiled CSS cannot be parsed.
	ErrStyleParseFailed = zerr.New("failed to parse stylesheet")

	// ErrStyleProcessFailed is returned when prefixing or minifying CSS fails.
	ErrStyleProcessFailed = zerr.New("failed to process stylesheet")

	// ErrBundleFailed is returned when the script bundler reports errors.
	ErrBundleFailed = zerr.New("failed to bundle scripts")

	// ErrImageOptimizeFailed is returned when an image cannot be decoded or re-encoded.
	ErrImageOptimizeFailed = zerr.New("failed to optimize image")

	// ErrWatcherStartFailed is returned when the filesystem watcher cannot be started.
	ErrWatcherStartFailed = zerr.New("failed to start file watcher")

	// ErrServerBindFailed is returned when the dev server cannot listen on its address.
	ErrServerBindFailed = zerr.New("failed to bind dev server")

	// ErrServerRunning is returned when the dev server is started twice.
	ErrServerRunning = zerr.New("dev server already running")
)

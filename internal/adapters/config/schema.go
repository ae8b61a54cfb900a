package config

// Kilnfile represents the structure of the kiln.yaml configuration file.
// Every key is optional and falls back to the built-in default.
type Kilnfile struct {
	Src      string             `yaml:"src"`
	Dist     string             `yaml:"dist"`
	Paths    map[string]PathDTO `yaml:"paths"`
	Browsers map[string]string  `yaml:"browsers"`
	Styles   StylesDTO          `yaml:"styles"`
	Scripts  ScriptsDTO         `yaml:"scripts"`
	Images   ImagesDTO          `yaml:"images"`
	Server   ServerDTO          `yaml:"server"`
}

// PathDTO overrides the globs and output directory of one category.
type PathDTO struct {
	Src   string  `yaml:"src"`
	Watch string  `yaml:"watch"`
	Dest  *string `yaml:"dest"`
}

// StylesDTO configures the style task.
type StylesDTO struct {
	MinSuffix  *string `yaml:"minSuffix"`
	Indent     *int    `yaml:"indent"`
	SassBinary string  `yaml:"sassBinary"`
}

// ScriptsDTO configures the script bundle.
type ScriptsDTO struct {
	Bundle    string `yaml:"bundle"`
	Minify    *bool  `yaml:"minify"`
	SourceMap *bool  `yaml:"sourcemap"`
}

// ImagesDTO configures image compression.
type ImagesDTO struct {
	JPEGQuality *int `yaml:"jpegQuality"`
}

// ServerDTO configures the development server.
type ServerDTO struct {
	Host string `yaml:"host"`
	Port *int   `yaml:"port"`
}

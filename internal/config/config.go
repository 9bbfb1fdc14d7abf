// Package config handles tool configuration loading and management.
package config

// Config holds all remesh tool settings.
type Config struct {
	Tools   ToolsConfig   `yaml:"tools"`
	Remesh  RemeshConfig  `yaml:"remesh"`
	Logging LoggingConfig `yaml:"logging"`
}

// ToolsConfig holds the argv templates for the external geometry tools.
// Templates may contain the placeholders {input}, {output}, {count} and
// {subdivisions}; they are expanded per invocation.
type ToolsConfig struct {
	RepairCommand []string `yaml:"repair_command"`
	RemeshCommand []string `yaml:"remesh_command"`
}

// RemeshConfig holds default remeshing parameters.
type RemeshConfig struct {
	Nodes            int  `yaml:"nodes"`             // Target output vertex count
	Binary           bool `yaml:"binary"`            // Write binary STL output
	CheckOrientation bool `yaml:"check_orientation"` // Verify cavity orientation after remeshing
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Tools: ToolsConfig{
			RepairCommand: []string{"admesh", "--write-binary-stl={output}", "{input}"},
			RemeshCommand: []string{"acvd", "{input}", "{output}", "{count}"},
		},
		Remesh: RemeshConfig{
			Nodes:            1000,
			Binary:           true,
			CheckOrientation: true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

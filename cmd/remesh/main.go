// remesh is a CLI utility that resamples STL surface meshes to a target
// vertex count, delegating repair and clustering to external tools.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/remesh/internal/config"
	"github.com/Faultbox/remesh/internal/logger"
	"github.com/Faultbox/remesh/internal/pipeline"
	"github.com/Faultbox/remesh/internal/tools"
	"github.com/Faultbox/remesh/pkg/stl"
)

var (
	flagNodes     int
	flagCavity    bool
	flagVerbose   bool
	flagASCII     bool
	flagKeepGoing bool
	flagConfig    string
)

var rootCmd = &cobra.Command{
	Use:   "remesh INPUT [OUTPUT] [DIR...]",
	Short: "Resample an STL surface mesh to a target vertex count",
	Long: `remesh cleans a triangulated STL surface and resamples it to an
approximately uniform triangle density with a given number of vertices.
Mesh repair and clustering-based remeshing run as external tools,
configured through remesh.yaml.

With no OUTPUT the input file is remeshed in place. Any further
directory arguments are scanned for .stl files, each remeshed in place.`,
	Version:      "1.0.0",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runRemesh,
}

func init() {
	rootCmd.Flags().IntVarP(&flagNodes, "nodes", "n", 1000, "Target output vertex count")
	rootCmd.Flags().BoolVarP(&flagCavity, "cavity", "c", false, "Orient the surface as a cavity (void) instead of a solid")
	rootCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().BoolVar(&flagASCII, "ascii", false, "Write ASCII STL instead of binary")
	rootCmd.Flags().BoolVar(&flagKeepGoing, "keep-going", false, "Continue after a file fails and report all failures at the end")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "Path to config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runRemesh(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("nodes") {
		cfg.Remesh.Nodes = flagNodes
	}
	if flagASCII {
		cfg.Remesh.Binary = false
	}

	level := cfg.Logging.Level
	if flagVerbose {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	codec := stl.NewCodec(stl.WithLogger(logger.Log))
	repairer := tools.NewRepairer(cfg.Tools.RepairCommand, logger.Log)
	remesher := tools.NewRemesher(cfg.Tools.RemeshCommand, codec, logger.Log)
	var checker pipeline.CavityChecker
	if cfg.Remesh.CheckOrientation {
		checker = pipeline.VolumeChecker{}
	}
	p := pipeline.New(codec, repairer, remesher, checker, logger.Log)

	requests, err := buildRequests(args, cfg)
	if err != nil {
		return err
	}

	var failed []string
	for _, req := range requests {
		logger.Info("remeshing",
			zap.String("input", req.Input),
			zap.String("output", req.Output),
			zap.Int("nodes", req.TargetNodes))
		if err := p.Run(req); err != nil {
			if !flagKeepGoing {
				return err
			}
			logger.Error("remeshing failed", zap.String("input", req.Input), zap.Error(err))
			failed = append(failed, req.Input)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d file(s) failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}

// buildRequests resolves the positional arguments: INPUT, an optional
// OUTPUT (any second argument that is not an existing directory), then
// directories whose .stl files are remeshed in place.
func buildRequests(args []string, cfg *config.Config) ([]pipeline.Request, error) {
	input := args[0]
	output := input
	dirs := args[1:]
	if len(dirs) > 0 && !isDir(dirs[0]) {
		output = dirs[0]
		dirs = dirs[1:]
	}

	request := func(in, out string) pipeline.Request {
		return pipeline.Request{
			Input:       in,
			Output:      out,
			TargetNodes: cfg.Remesh.Nodes,
			Cavity:      flagCavity,
			Binary:      cfg.Remesh.Binary,
		}
	}

	requests := []pipeline.Request{request(input, output)}
	for _, dir := range dirs {
		files, err := listSTL(dir)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			requests = append(requests, request(f, f))
		}
	}
	return requests, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// listSTL returns the .stl files directly inside dir, sorted by name.
func listSTL(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".stl") {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	return files, nil
}

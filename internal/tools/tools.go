// Package tools adapts external geometry programs to the pipeline's
// repairer and remesher interfaces. Commands are argv templates with
// {input}, {output}, {count} and {subdivisions} placeholders expanded
// per invocation.
package tools

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// expandArgs substitutes placeholder values into an argv template.
func expandArgs(template []string, values map[string]string) []string {
	args := make([]string, len(template))
	for i, a := range template {
		for key, val := range values {
			a = strings.ReplaceAll(a, key, val)
		}
		args[i] = a
	}
	return args
}

// hasPlaceholder reports whether any template argument contains the key.
func hasPlaceholder(template []string, key string) bool {
	for _, a := range template {
		if strings.Contains(a, key) {
			return true
		}
	}
	return false
}

// run executes an expanded argv, folding captured stderr into the error.
func run(args []string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("empty command")
	}
	log.Debug("running external tool", zap.Strings("argv", args))

	var stderr bytes.Buffer
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", args[0], err, msg)
		}
		return fmt.Errorf("%s: %w", args[0], err)
	}
	return nil
}

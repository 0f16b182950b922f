package buildconfig

import (
	"bufio"
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"jls/internal/logging"
)

// parseMavenInfoLine reads "[INFO]  group:artifact:type:version:scope:/abs/path.jar".
// The contract is line-oriented rather than a regex: each field is colon
// separated and the path is always the final field.
func parseMavenInfoLine(line string) (path string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[INFO]") {
		return "", false
	}
	line = strings.TrimSpace(strings.TrimPrefix(line, "[INFO]"))
	parts := strings.Split(line, ":")
	if len(parts) < 5 {
		return "", false
	}
	path = parts[len(parts)-1]
	if path == "" {
		return "", false
	}
	return path, true
}

// runMaven invokes the maven executable in batch mode with workDir as the
// current directory, returning the classpath/doc-path entries parsed from
// stdout. A non-zero exit abandons inference and returns an empty result.
func runMaven(ctx context.Context, workDir string, extraArgs []string, timeout time.Duration) Result {
	cpCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	classPath := mavenGoal(cpCtx, workDir, append([]string{
		"-B", "dependency:list", "-DoutputAbsoluteArtifactFilename=true",
	}, extraArgs...))

	docCtx, cancel2 := context.WithTimeout(ctx, timeout)
	defer cancel2()
	docPath := mavenGoal(docCtx, workDir, append([]string{
		"-B", "dependency:sources", "-Dclassifier=sources", "-DoutputAbsoluteArtifactFilename=true",
	}, extraArgs...))

	return Result{ClassPath: classPath, DocPath: docPath}
}

func mavenGoal(ctx context.Context, workDir string, args []string) []string {
	cmd := exec.CommandContext(ctx, "mvn", args...)
	cmd.Dir = workDir

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logging.BuildConfigWarn("maven stdout pipe: %v", err)
		return nil
	}
	if err := cmd.Start(); err != nil {
		logging.BuildConfigWarn("maven start: %v", err)
		return nil
	}

	var paths []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if path, ok := parseMavenInfoLine(scanner.Text()); ok {
			if filepath.IsAbs(path) {
				paths = append(paths, path)
			} else if existsOnDisk(filepath.Join(workDir, path)) {
				paths = append(paths, filepath.Join(workDir, path))
			}
		}
	}

	if err := cmd.Wait(); err != nil {
		logging.BuildConfigWarn("maven exited non-zero: %v", err)
		return nil
	}
	return paths
}

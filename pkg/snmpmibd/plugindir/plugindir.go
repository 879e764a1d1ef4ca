// Package plugindir implements the supplemented plugin-directory loading
// feature from SPEC_FULL.md §4: scan a directory of per-OID files and
// register each as a constant-value plugin on a mib.Agent.
//
// Grounded on the teacher's config/loader.go directory-walk-with-
// per-file-isolation pattern (yamlFiles + "skip malformed ... file" +
// continue) — generalised here from "parse every YAML file, accumulate
// per-file errors" to "read every OID-named file, log and skip the ones
// that don't fit, never abort the whole scan over one bad file". See
// DESIGN.md "pkg/snmpmibd/plugindir".
package plugindir

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vpbank/snmpmibd/mib"
)

var oidFilename = regexp.MustCompile(`^([0-9]+\.?)+$`)

var scriptExtensions = map[string]bool{
	".rb": true, ".sh": true, ".py": true, ".pl": true,
}

// Load scans dir and registers one constant-value plugin per OID-named
// file it finds, on agent. Errors reading an individual file are logged
// and that file is skipped; Load itself only fails if dir cannot be
// walked at all.
func Load(dir string, agent *mib.Agent, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(noopWriter{}, nil))
	}

	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if scriptExtensions[strings.ToLower(filepath.Ext(name))] {
			logger.Warn("plugindir: skipping script file, no safe in-process eval", "file", path)
			return nil
		}

		base := name
		if !oidFilename.MatchString(base) {
			logger.Warn("plugindir: skipping file whose name is not an OID", "file", path)
			return nil
		}

		oid, err := mib.ParseOid(base)
		if err != nil {
			logger.Warn("plugindir: skipping unparseable oid filename", "file", path, "error", err.Error())
			return nil
		}

		body, err := readTrimmed(path)
		if err != nil {
			logger.Warn("plugindir: skipping unreadable file", "file", path, "error", err.Error())
			return nil
		}

		producer := constProducer(body)
		if err := agent.AddPlugin(oid, producer); err != nil {
			logger.Warn("plugindir: failed to register plugin", "file", path, "oid", oid.String(), "error", err.Error())
		} else {
			logger.Debug("plugindir: registered plugin", "file", path, "oid", oid.String())
		}
		return nil
	})
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func constProducer(body string) mib.Producer {
	return func(string) (mib.Shape, error) {
		if n, err := strconv.Atoi(body); err == nil {
			return n, nil
		}
		return body, nil
	}
}

type noopWriter struct{}

func (noopWriter) Write(b []byte) (int, error) { return len(b), nil }

package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
	m "testscope.dev/pkg/testscope/internal/model"
)

const unitReportExt = ".unit.yaml"

// UnitStore persists resolved deployment unit reports.
type UnitStore interface {
	SaveReports(ctx context.Context, path m.Path, reports []m.UnitReport) error
	LoadReports(ctx context.Context, path m.Path) ([]m.UnitReport, error)
}

// LocalUnitStore writes one YAML file per report into a directory.
type LocalUnitStore struct {
	fs LocationFSAdapter
}

// NewLocalUnitStore constructs a LocalUnitStore.
func NewLocalUnitStore(fs LocationFSAdapter) *LocalUnitStore {
	return &LocalUnitStore{fs: fs}
}

// SaveReports writes every report into dir, named after its test target.
func (s *LocalUnitStore) SaveReports(ctx context.Context, dir m.Path, reports []m.UnitReport) error {
	for _, report := range reports {
		content, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to encode report for %s: %w", report.TestClass, err)
		}

		target := s.fs.JoinPath(ctx, string(dir), reportFileName(report))
		if err := s.fs.WriteFile(ctx, target, content, 0o600); err != nil {
			return fmt.Errorf("failed to write report %s: %w", target, err)
		}
	}

	return nil
}

// LoadReports reads every report file found directly in dir, ordered by
// file name.
func (s *LocalUnitStore) LoadReports(ctx context.Context, dir m.Path) ([]m.UnitReport, error) {
	var files []string

	err := s.fs.Walk(ctx, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != string(dir) {
				return filepath.SkipDir
			}

			return nil
		}

		if strings.HasSuffix(path, unitReportExt) {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reports in %s: %w", dir, err)
	}

	sort.Strings(files)

	reports := make([]m.UnitReport, 0, len(files))

	for _, file := range files {
		content, err := s.fs.ReadFile(ctx, m.Path(file))
		if err != nil {
			return nil, fmt.Errorf("failed to read report %s: %w", file, err)
		}

		var report m.UnitReport
		if err := yaml.Unmarshal(content, &report); err != nil {
			return nil, fmt.Errorf("failed to parse report %s: %w", file, err)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

func reportFileName(report m.UnitReport) string {
	name := string(report.TestClass)
	if report.TestMethod != "" {
		name += "#" + report.TestMethod
	}

	replacer := strings.NewReplacer("/", "_", "\\", "_", "#", "-", ":", "_")

	return replacer.Replace(name) + unitReportExt
}

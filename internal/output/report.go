package output

import (
	"os"

	"github.com/rpgo/retirement-simulator/internal/domain"
	"gopkg.in/yaml.v3"
)

// GenerateReport writes the report to a timestamped file in dir using the
// named format and returns the file name.
func GenerateReport(report *domain.SimulationReport, format, dir string) (string, error) {
	f := GetFormatterByName(format)
	if f == nil {
		return "", unsupported(format)
	}
	return WriteFormatted(f, report, dir, FileExtension(f.Name()))
}

// SaveProfile writes a profile as YAML.
func SaveProfile(profile *domain.Profile, filename string) error {
	b, err := yaml.Marshal(profile)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

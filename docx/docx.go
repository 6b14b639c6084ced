package docx

import (
	"fmt"
	"os"
)

// ReadGuidanceFile is a convenience wrapper around ParseGuidance for a file
// on disk.
func ReadGuidanceFile(path string) (Guidance, error) {
	f, err := os.Open(path)
	if err != nil {
		return Guidance{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Guidance{}, err
	}
	g, err := ParseGuidance(f, fi.Size())
	if err != nil {
		return Guidance{}, fmt.Errorf("guidelines %s: %w", path, err)
	}
	return g, nil
}

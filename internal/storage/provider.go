// Package storage defines the Record Store file-system abstraction.
package storage

import "github.com/royfox/little-reviews/internal/models"

// Provider is the read-only view of the Record Store used by the aggregator.
type Provider interface {
	// List returns every record file (.yaml or .yml) in the store, sorted by name.
	List() ([]models.RecordFile, error)
	// Read returns the raw bytes of the record file name.
	Read(name string) ([]byte, error)
}

// IsRecordFile reports whether name carries one of the recognised record
// extensions.
func IsRecordFile(name string) bool {
	for _, ext := range recordExts {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			return true
		}
	}
	return false
}

var recordExts = []string{".yaml", ".yml"}

// Package record defines the Store interface, the Value and Type models,
// configuration, and error types for the records storage system.
package record

import "errors"

// DefaultReportLimit is the per-type cap on enumerated content-change lines
// before the report collapses the remainder into an "omitted" line.
const DefaultReportLimit = 10

// Config holds the parameters for opening a Store. Path is the persisted
// state location; there is no implicit default, the surrounding CLI supplies
// one. MirrorPath, when set, names a SQLite database that Flush rewrites with
// the current collections for external querying.
type Config struct {
	Path        string `json:"path" yaml:"path"`
	MirrorPath  string `json:"mirror_path,omitempty" yaml:"mirror_path,omitempty"`
	ReportLimit int    `json:"report_limit,omitempty" yaml:"report_limit,omitempty"`
}

// Config validation errors.
var (
	ErrPathEmpty          = errors.New("path must not be empty")
	ErrReportLimitInvalid = errors.New("report limit must not be negative")
)

// Validate checks that the Config is well-formed, returning a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Path == "" {
		return ErrPathEmpty
	}
	if c.ReportLimit < 0 {
		return ErrReportLimitInvalid
	}
	return nil
}

// EffectiveReportLimit returns ReportLimit, or DefaultReportLimit when unset.
func (c Config) EffectiveReportLimit() int {
	if c.ReportLimit == 0 {
		return DefaultReportLimit
	}
	return c.ReportLimit
}

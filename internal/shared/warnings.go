package shared

import (
	"fmt"
	"sort"
	"strings"
)

// WarningType represents different types of warnings
type WarningType int

const (
	FileReadWarning WarningType = iota
	MissingTagWarning
	FetchWarning
	NotFoundWarning
	NoDataWarning
	NoMatchWarning
	EnrichmentWarning
	WriteWarning
)

// Warning represents a single warning with context
type Warning struct {
	Type    WarningType
	Message string
	Context string // File/Album context
	Details string // Additional details like error message
}

// WarningCollector collects warnings during a tagging run
type WarningCollector struct {
	warnings []Warning
	enabled  bool
}

// NewWarningCollector creates a new warning collector
func NewWarningCollector(enabled bool) *WarningCollector {
	return &WarningCollector{
		warnings: make([]Warning, 0),
		enabled:  enabled,
	}
}

// AddWarning adds a warning to the collector
func (wc *WarningCollector) AddWarning(warningType WarningType, context, message, details string) {
	if !wc.enabled {
		return
	}

	wc.warnings = append(wc.warnings, Warning{
		Type:    warningType,
		Message: message,
		Context: context,
		Details: details,
	})
}

// AddFileReadWarning records a file that could not be parsed as audio
func (wc *WarningCollector) AddFileReadWarning(path, details string) {
	wc.AddWarning(FileReadWarning, path, "Failed to load file", details)
}

// AddMissingTagWarning records a file skipped for a missing required tag
func (wc *WarningCollector) AddMissingTagWarning(path, tag string) {
	wc.AddWarning(MissingTagWarning, path, fmt.Sprintf("Missing %s tag", tag), "")
}

// AddFetchWarning records a remote resolver transport failure for a group
func (wc *WarningCollector) AddFetchWarning(artist, album, details string) {
	context := fmt.Sprintf("%s - %s", artist, album)
	wc.AddWarning(FetchWarning, context, "Failed to fetch from resolver", details)
}

// AddNotFoundWarning records a group the resolver had no record for
func (wc *WarningCollector) AddNotFoundWarning(artist, album string) {
	context := fmt.Sprintf("%s - %s", artist, album)
	wc.AddWarning(NotFoundWarning, context, "Album not found", "")
}

// AddNoDataWarning records a file with neither title nor track number to match on
func (wc *WarningCollector) AddNoDataWarning(path string) {
	wc.AddWarning(NoDataWarning, path, "No data to match with", "")
}

// AddNoMatchWarning records a file no track record matched
func (wc *WarningCollector) AddNoMatchWarning(path string) {
	wc.AddWarning(NoMatchWarning, path, "No match found", "")
}

// AddEnrichmentWarning records a lyrics/BPM failure that skipped a file
func (wc *WarningCollector) AddEnrichmentWarning(path, details string) {
	wc.AddWarning(EnrichmentWarning, path, "Failed to assemble enrichment fields", details)
}

// AddWriteWarning records a tag write failure
func (wc *WarningCollector) AddWriteWarning(path, details string) {
	wc.AddWarning(WriteWarning, path, "Failed to write tags", details)
}

// HasWarnings returns true if there are any warnings
func (wc *WarningCollector) HasWarnings() bool {
	return len(wc.warnings) > 0
}

// GetWarningCount returns the total number of warnings
func (wc *WarningCollector) GetWarningCount() int {
	return len(wc.warnings)
}

// GetWarningsByType returns warnings grouped by type
func (wc *WarningCollector) GetWarningsByType() map[WarningType][]Warning {
	grouped := make(map[WarningType][]Warning)
	for _, warning := range wc.warnings {
		grouped[warning.Type] = append(grouped[warning.Type], warning)
	}
	return grouped
}

// PrintSummary prints a formatted summary of all warnings
func (wc *WarningCollector) PrintSummary() {
	if !wc.HasWarnings() {
		return
	}

	ColorWarning.Printf("\n⚠️  Warning Summary (%d warnings):\n", len(wc.warnings))
	ColorWarning.Println(strings.Repeat("─", 50))

	grouped := wc.GetWarningsByType()

	// Sort warning types for consistent output
	var types []WarningType
	for warningType := range grouped {
		types = append(types, warningType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	for _, warningType := range types {
		wc.printWarningTypeSection(warningType, grouped[warningType])
	}
}

// printWarningTypeSection prints warnings for a specific type
func (wc *WarningCollector) printWarningTypeSection(warningType WarningType, warnings []Warning) {
	if len(warnings) == 0 {
		return
	}

	sectionTitle := wc.getWarningTypeTitle(warningType)
	ColorWarning.Printf("\n%s (%d):\n", sectionTitle, len(warnings))

	// Group similar warnings to avoid repetition
	contextCounts := make(map[string]int)
	for _, warning := range warnings {
		contextCounts[warning.Context]++
	}

	var contexts []string
	for context := range contextCounts {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		count := contextCounts[context]
		if count > 1 {
			ColorWarning.Printf("  • %s (×%d)\n", context, count)
		} else {
			ColorWarning.Printf("  • %s\n", context)
		}
	}
}

// getWarningTypeTitle returns a human-readable title for a warning type
func (wc *WarningCollector) getWarningTypeTitle(warningType WarningType) string {
	switch warningType {
	case FileReadWarning:
		return "Unreadable Files"
	case MissingTagWarning:
		return "Files Missing Required Tags"
	case FetchWarning:
		return "Resolver Fetch Failures"
	case NotFoundWarning:
		return "Albums Not Found"
	case NoDataWarning:
		return "Files With No Match Data"
	case NoMatchWarning:
		return "Files With No Matching Track"
	case EnrichmentWarning:
		return "Enrichment Failures"
	case WriteWarning:
		return "Tag Write Failures"
	default:
		return "Other Warnings"
	}
}

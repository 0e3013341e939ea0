package types

import "fmt"

// Section names a top-level list in the Dock document.
type Section string

// Dock sections.
const (
	SectionPersistentApps   Section = "persistent-apps"
	SectionPersistentOthers Section = "persistent-others"
	SectionRecentApps       Section = "recent-apps"
	SectionStaticApps       Section = "static-apps"
	SectionStaticOthers     Section = "static-others"
)

// AllSections lists every section in the order they are listed and encoded.
var AllSections = []Section{
	SectionPersistentApps,
	SectionPersistentOthers,
	SectionRecentApps,
	SectionStaticApps,
	SectionStaticOthers,
}

// ParseSection returns the Section named by s.
// Returns ErrUnknownSection if s is not one of AllSections.
func ParseSection(s string) (Section, error) {
	for _, sec := range AllSections {
		if string(sec) == s {
			return sec, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, s)
}

func (s Section) String() string { return string(s) }

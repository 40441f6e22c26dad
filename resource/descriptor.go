// Package resource acquires, builds, and runs the version-controlled
// inputs of a test run: the implementations under test and the seed
// corpus repository.
package resource

import (
	"fmt"
	"strings"
)

// DefaultRevision is assumed when a descriptor omits its revision.
const DefaultRevision = "master"

// Descriptor identifies a version-controlled resource. Location may be a
// local path or a URL; Revision may be a branch name or a commit hash.
type Descriptor struct {
	Name     string
	Location string
	Revision string
}

// ParseNamed parses a "name,location[,revision]" description.
func ParseNamed(description string) (Descriptor, error) {
	parts := strings.Split(description, ",")
	switch len(parts) {
	case 2:
		return Descriptor{Name: parts[0], Location: parts[1], Revision: DefaultRevision}, nil
	case 3:
		return Descriptor{Name: parts[0], Location: parts[1], Revision: parts[2]}, nil
	default:
		return Descriptor{}, fmt.Errorf("invalid resource description %q: want name,location[,revision]", description)
	}
}

// ParseLocation parses a "location[,revision]" description for resources
// that carry no name of their own.
func ParseLocation(description string) (Descriptor, error) {
	parts := strings.Split(description, ",")
	switch len(parts) {
	case 1:
		return Descriptor{Location: parts[0], Revision: DefaultRevision}, nil
	case 2:
		return Descriptor{Location: parts[0], Revision: parts[1]}, nil
	default:
		return Descriptor{}, fmt.Errorf("invalid resource description %q: want location[,revision]", description)
	}
}

package backup

import (
	"fmt"
	"sort"
	"strconv"
)

// MountDescriptor is one mount of a service container.
type MountDescriptor struct {
	Key         string
	Destination string
}

// Mounts maps a mount key to its in-container destination.
type Mounts map[string]string

// MountKey returns the declared mount name, or the positional index for unnamed mounts.
func MountKey(name string, index int) string {
	if name == "" {
		return strconv.Itoa(index)
	}
	return name
}

// Add records destination under the mount's key and returns the key used.
// A key already taken, such as a volume named "1" next to an unnamed mount
// at index 1, gets a numeric suffix so no mount is dropped.
func (m Mounts) Add(name string, index int, destination string) string {
	base := MountKey(name, index)
	key := base
	for n := 1; ; n++ {
		if _, taken := m[key]; !taken {
			break
		}
		key = fmt.Sprintf("%s_%d", base, n)
	}
	m[key] = destination
	return key
}

// Descriptors returns the mounts sorted by key.
func (m Mounts) Descriptors() []MountDescriptor {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]MountDescriptor, 0, len(keys))
	for _, key := range keys {
		out = append(out, MountDescriptor{Key: key, Destination: m[key]})
	}
	return out
}

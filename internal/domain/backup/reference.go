package backup

import "strings"

// DefaultImage is used for the helper container when no image is configured.
const DefaultImage = "ubuntu"

// ImageReference is an image name with an optional tag.
type ImageReference struct {
	Name   string
	Tag    string
	HasTag bool
}

// ResolveReference splits a configured image string on its first colon.
//
// No validation happens here: a malformed reference is handed to the
// runtime as is and fails there.
func ResolveReference(image string) ImageReference {
	if image == "" {
		return ImageReference{Name: DefaultImage}
	}

	name, tag, found := strings.Cut(image, ":")
	if name == "" {
		// Keep the name non-empty; the runtime will reject the reference.
		return ImageReference{Name: image}
	}
	return ImageReference{Name: name, Tag: tag, HasTag: found}
}

// String renders the reference the same way for search, pull and create.
func (r ImageReference) String() string {
	if !r.HasTag {
		return r.Name
	}
	return r.Name + ":" + r.Tag
}

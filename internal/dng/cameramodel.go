package dng

// CameraModelTags resolves the Make/Model/UniqueCameraModel EXIF triple
// for a settings override string, following the small lookup table the
// original renderer hardcodes for its known capture rigs. An override
// not present in the table passes through verbatim as UniqueCameraModel
// with Make/Model left blank; an empty override falls back to
// buildModel, the container's own recorded device string.
func CameraModelTags(override, buildModel string) (unique, make_, model string) {
	switch override {
	case "Blackmagic":
		return "Blackmagic Pocket Cinema Camera 4K", "", ""
	case "Panasonic":
		return "Panasonic Varicam RAW", "", ""
	case "Fujifilm", "Fujifilm X-T5":
		return "Fujifilm X-T5", "Fujifilm", "X-T5"
	case "":
		return buildModel, "", ""
	default:
		return override, "", ""
	}
}

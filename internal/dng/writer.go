// Package dng assembles a Cinema DNG (TIFF 6.0 based) byte stream from
// a rendered frame's tag values and packed image data: a single IFD,
// little-endian, ascending tag order, with large values spilled after
// the IFD and pointed at by offset.
package dng

// Params is everything Assemble needs to emit one frame's DNG. Fields
// left at their zero value are treated per-tag: zero color matrices are
// omitted, an empty illuminant resolves to "unknown", and so on.
type Params struct {
	Width, Height int
	EncodedBits   int
	ImageData     []byte

	CFA2x2          [4]int
	QuadBayerActive bool // INTERPRET_AS_QUAD_BAYER && draftScale==1 && CorrectQBCFAMetadata

	Orientation int // capture orientation in degrees: 0, 90, 180, 270
	Flipped     bool

	CameraModelOverride string
	BuildModel           string

	BlackLevel [4]float64
	WhiteLevel float64

	ColorMatrix1, ColorMatrix2     [9]float64
	ForwardMatrix1, ForwardMatrix2 [9]float64
	AsShotNeutral                  [3]float64
	Illuminant1, Illuminant2       string

	BaselineExposure    float64
	ExposureTimeSeconds float64
	FNumber             float64
	ISO                 int
	FocalLength         float64

	FrameNumber  int
	RecordingFPS float64

	Linearized bool // true iff LinearizationApplies(...) for this frame
	DstWhite   int  // destination white level; sizes the linearization table

	OpcodeList2 []byte // nil when the gain map was baked into pixels instead
}

const softwareTag = "MotionCam Tools"

var identityMatrix3x3 = [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}

func isZeroMatrix(m [9]float64) bool {
	for _, v := range m {
		if v != 0 {
			return false
		}
	}
	return true
}

// Assemble builds the complete little-endian TIFF/DNG byte stream.
func Assemble(p Params) []byte {
	w := NewIFDWriter()

	w.AddByte(tagNewSubfileType, []byte{0, 0, 0, 0})
	w.AddLong(tagImageWidth, []uint32{uint32(p.Width)})
	w.AddLong(tagImageLength, []uint32{uint32(p.Height)})
	w.AddShort(tagBitsPerSample, []uint16{uint16(p.EncodedBits)})
	w.AddShort(tagCompression, []uint16{compressionNone})
	w.AddShort(tagPhotometricInterpretation, []uint16{photometricCFA})

	unique, make_, model := CameraModelTags(p.CameraModelOverride, p.BuildModel)
	if make_ != "" {
		w.AddASCII(tagMake, make_)
	}
	if model != "" {
		w.AddASCII(tagModel, model)
	}

	w.AddLongReserveStripOffset(tagStripOffsets)
	w.AddShort(tagOrientation, []uint16{orientationTag(p.Orientation, p.Flipped)})
	w.AddShort(tagSamplesPerPixel, []uint16{1})
	w.AddLong(tagRowsPerStrip, []uint32{uint32(p.Height)})
	w.AddLong(tagStripByteCounts, []uint32{uint32(len(p.ImageData))})
	w.AddRational(tagXResolution, [][2]uint32{{300, 1}})
	w.AddRational(tagYResolution, [][2]uint32{{300, 1}})
	w.AddShort(tagPlanarConfiguration, []uint16{planarConfigChunky})
	w.AddShort(tagResolutionUnit, []uint16{resolutionUnitInch})
	w.AddASCII(tagSoftware, softwareTag)

	w.AddSRationalArrayFromFloats(tagExposureTime, []float64{p.ExposureTimeSeconds})
	w.AddRationalArrayFromFloats(tagFNumber, []float64{p.FNumber})
	w.AddShort(tagISOSpeedRatings, []uint16{uint16(p.ISO)})
	w.AddRationalArrayFromFloats(tagFocalLength, []float64{p.FocalLength})

	if p.QuadBayerActive {
		pattern := QuadBayer4x4Pattern(p.CFA2x2)
		w.AddShort(tagCFARepeatPatternDim, []uint16{4, 4})
		w.AddByte(tagCFAPattern, pattern[:])
	} else {
		pattern := [4]byte{byte(p.CFA2x2[0]), byte(p.CFA2x2[1]), byte(p.CFA2x2[2]), byte(p.CFA2x2[3])}
		w.AddShort(tagCFARepeatPatternDim, []uint16{2, 2})
		w.AddByte(tagCFAPattern, pattern[:])
	}
	w.AddByte(tagCFAPlaneColor, []byte{0, 1, 2})
	w.AddShort(tagCFALayout, []uint16{1})

	w.AddByte(tagDNGVersion, []byte{1, 4, 0, 0})
	w.AddByte(tagDNGBackwardVersion, []byte{1, 1, 0, 0})
	w.AddASCII(tagUniqueCameraModel, unique)

	blackLevel := p.BlackLevel
	whiteLevel := p.WhiteLevel
	if p.Linearized {
		blackLevel = [4]float64{0, 0, 0, 0}
		whiteLevel = 65534
		table := BuildLinearizationTable(p.DstWhite)
		w.AddShort(tagLinearizationTable, table)
	}
	w.AddShort(tagBlackLevelRepeatDim, []uint16{2, 2})
	w.AddRationalArrayFromFloats(tagBlackLevel, blackLevel[:])
	w.AddLong(tagWhiteLevel, []uint32{uint32(whiteLevel)})

	if !isZeroMatrix(p.ColorMatrix1) {
		w.AddSRationalArrayFromFloats(tagColorMatrix1, p.ColorMatrix1[:])
	}
	if !isZeroMatrix(p.ColorMatrix2) {
		w.AddSRationalArrayFromFloats(tagColorMatrix2, p.ColorMatrix2[:])
	}
	if !isZeroMatrix(p.ForwardMatrix1) {
		w.AddSRationalArrayFromFloats(tagForwardMatrix1, p.ForwardMatrix1[:])
	}
	if !isZeroMatrix(p.ForwardMatrix2) {
		w.AddSRationalArrayFromFloats(tagForwardMatrix2, p.ForwardMatrix2[:])
	}
	w.AddSRationalArrayFromFloats(tagCameraCalibration1, identityMatrix3x3[:])
	w.AddSRationalArrayFromFloats(tagCameraCalibration2, identityMatrix3x3[:])
	w.AddRationalArrayFromFloats(tagAsShotNeutral, p.AsShotNeutral[:])
	w.AddShort(tagCalibrationIlluminant1, []uint16{parseIlluminant(p.Illuminant1)})
	w.AddShort(tagCalibrationIlluminant2, []uint16{parseIlluminant(p.Illuminant2)})
	w.AddSRationalArrayFromFloats(tagBaselineExposure, []float64{p.BaselineExposure})

	w.AddLong(tagActiveArea, []uint32{0, 0, uint32(p.Height), uint32(p.Width)})

	tc := BuildTimeCode(p.FrameNumber, p.RecordingFPS)
	w.AddByte(tagTimeCode, tc[:])
	w.AddSRationalArrayFromFloats(tagFrameRateTag, []float64{p.RecordingFPS})

	if len(p.OpcodeList2) > 0 {
		w.AddUndefined(tagOpcodeList2, p.OpcodeList2)
	}

	return w.Write(p.ImageData)
}

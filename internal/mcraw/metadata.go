package mcraw

import "encoding/json"

// containerJSON mirrors the fields of the container's JSON metadata
// document that the renderer and DNG writer need. Unknown fields are
// ignored; any missing numeric field defaults to its zero value.
type containerJSON struct {
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	BitsPerSample  int    `json:"bitsPerSample"`
	SensorArrangement string `json:"sensorArrangement"`

	ISO          float64 `json:"iso"`
	ExposureTime float64 `json:"exposureTime"`
	Aperture     float64 `json:"aperture"`
	FocalLength  float64 `json:"focalLength"`
	Orientation  int     `json:"orientation"`

	ColorMatrix1   []float64 `json:"colorMatrix1"`
	ColorMatrix2   []float64 `json:"colorMatrix2"`
	ForwardMatrix1 []float64 `json:"forwardMatrix1"`
	ForwardMatrix2 []float64 `json:"forwardMatrix2"`
	AsShotNeutral  []float64 `json:"asShotNeutral"`
	Illuminant1    string    `json:"illuminant1"`
	Illuminant2    string    `json:"illuminant2"`

	BlackLevel []float64 `json:"blackLevel"`
	WhiteLevel float64   `json:"whiteLevel"`

	LensShadingMap       [][]float32 `json:"lensShadingMap"`
	LensShadingMapWidth  int         `json:"lensShadingMapWidth"`
	LensShadingMapHeight int         `json:"lensShadingMapHeight"`

	NeedRemosaic bool `json:"needRemosaic"`
	HasAudio     bool `json:"hasAudio"`
	NumSegments  int  `json:"numSegments"`

	BuildModel string `json:"buildModel"`

	Frames []frameJSON `json:"frames"`
}

// frameJSON is the optional per-frame metadata fragment a type-3 block
// may carry ahead of the frame block it annotates.
type frameJSON struct {
	ISO          *float64 `json:"iso"`
	ExposureTime *float64 `json:"exposureTime"`
	Timestamp    *uint64  `json:"timestamp"`
}

func parseContainerJSON(b []byte) (containerJSON, error) {
	var doc containerJSON
	if err := json.Unmarshal(b, &doc); err != nil {
		return containerJSON{}, ErrContainerInvalid
	}
	if doc.Width == 0 || doc.Height == 0 {
		return containerJSON{}, ErrContainerInvalid
	}
	return doc, nil
}

func (doc containerJSON) toFileMetadata() FileMetadata {
	m := FileMetadata{
		Width:          doc.Width,
		Height:         doc.Height,
		OriginalWidth:  doc.Width,
		OriginalHeight: doc.Height,
		BitsPerSample:  doc.BitsPerSample,
		CFA:            ParseCFAPattern(doc.SensorArrangement),
		ISO:            doc.ISO,
		ExposureTime:   doc.ExposureTime,
		Aperture:       doc.Aperture,
		FocalLength:    doc.FocalLength,
		Orientation:    doc.Orientation,
		Illuminant1:    doc.Illuminant1,
		Illuminant2:    doc.Illuminant2,
		WhiteLevel:     doc.WhiteLevel,
		NeedRemosaic:   doc.NeedRemosaic,
		HasAudio:       doc.HasAudio,
		NumSegments:    doc.NumSegments,
		BuildModel:     doc.BuildModel,
	}
	if m.BitsPerSample == 0 {
		m.BitsPerSample = 12
	}
	copyMatrix(&m.ColorMatrix1, doc.ColorMatrix1)
	copyMatrix(&m.ColorMatrix2, doc.ColorMatrix2)
	copyMatrix(&m.ForwardMatrix1, doc.ForwardMatrix1)
	copyMatrix(&m.ForwardMatrix2, doc.ForwardMatrix2)
	for i := 0; i < 3 && i < len(doc.AsShotNeutral); i++ {
		m.AsShotNeutral[i] = doc.AsShotNeutral[i]
	}
	for i := 0; i < 4 && i < len(doc.BlackLevel); i++ {
		m.BlackLevel[i] = doc.BlackLevel[i]
	}
	m.LensShadingMapWidth = doc.LensShadingMapWidth
	m.LensShadingMapHeight = doc.LensShadingMapHeight
	for i := 0; i < 4 && i < len(doc.LensShadingMap); i++ {
		m.LensShadingMap[i] = doc.LensShadingMap[i]
	}
	if m.NeedRemosaic {
		m.HasQuadBayer = true
	}
	return m
}

func copyMatrix(dst *[9]float64, src []float64) {
	for i := 0; i < 9 && i < len(src); i++ {
		dst[i] = src[i]
	}
}

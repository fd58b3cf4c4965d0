package scanner

// Pipeline chains image acquisition, QR detection and payload parsing for the
// upload path. The camera path enters at ParsePayload with text the browser
// already decoded.
type Pipeline struct {
	acquirer *Acquirer
}

// NewPipeline builds a pipeline enforcing the given upload size limit.
func NewPipeline(maxUploadBytes int64) *Pipeline {
	return &Pipeline{acquirer: NewAcquirer(maxUploadBytes)}
}

// ScanImage runs an uploaded file through the full decode chain and returns
// the parsed identity. The identity may still be invalid (rawData only);
// callers reject those before submission.
func (p *Pipeline) ScanImage(data []byte) (StudentIdentity, error) {
	img, err := p.acquirer.FromBytes(data)
	if err != nil {
		return StudentIdentity{}, err
	}
	text, err := DecodeQR(img)
	if err != nil {
		return StudentIdentity{}, err
	}
	return ParsePayload(text)
}

package constants

// Method records which strategy produced the extracted text.
type Method string

const (
	MethodPDFText  Method = "pdf-text"  // embedded text layer
	MethodPDFOCR   Method = "pdf-ocr"   // scanned pdf, rasterized + OCR
	MethodDOCX     Method = "docx"      // WordprocessingML stripped to text
	MethodImageOCR Method = "image-ocr" // raster image straight to OCR
	MethodPasted   Method = "pasted"    // user supplied text, no extraction
)

// Progress messages shown to the user between stages.
const (
	StatusPreparing  = "Preparing document…"
	StatusReady      = "Document ready"
	StatusUnreadable = "Could not read document"
	StatusPrepText   = "Preparing text…"
	StatusDone       = "Done"
	StatusFailed     = "Could not explain document"
)

// ApologyAnswer is the chat reply used when the model cannot be reached.
const ApologyAnswer = "Sorry, I could not answer that right now."

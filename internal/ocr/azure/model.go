package azure

// OperationStatus is the state of an analyze operation.
type OperationStatus string

// Operation states reported by the service.
const (
	OperationStatusSucceeded  OperationStatus = "succeeded"
	OperationStatusRunning    OperationStatus = "running"
	OperationStatusNotStarted OperationStatus = "notStarted"
	OperationStatusFailed     OperationStatus = "failed"
)

// AnalyzeOperation is the body returned by the Operation-Location URL.
type AnalyzeOperation struct {
	Status OperationStatus `json:"status"`

	Result AnalyzeResult   `json:"analyzeResult"`
	Error  *OperationError `json:"error,omitempty"`
}

// OperationError describes a failed operation.
type OperationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AnalyzeResult is the recognition output.
type AnalyzeResult struct {
	ModelID string `json:"modelId"`

	Content string `json:"content"`
	Pages   []Page `json:"pages"`
}

// Page is one analyzed page. For image input the unit is "pixel".
type Page struct {
	PageNumber int `json:"pageNumber"`

	Unit   string  `json:"unit"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Lines []Line `json:"lines"`
	Words []Word `json:"words"`
}

// Line is a recognized text line.
type Line struct {
	Content string    `json:"content"`
	Polygon []float64 `json:"polygon"`
	Spans   []Span    `json:"spans"`
}

// Word is a recognized word.
type Word struct {
	Content string `json:"content"`

	Span    Span      `json:"span"`
	Polygon []float64 `json:"polygon"`

	Confidence float64 `json:"confidence"`
}

// Span locates text in AnalyzeResult.Content.
type Span struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// ErrorResponse is the body of a rejected request.
type ErrorResponse struct {
	Error OperationError `json:"error"`
}

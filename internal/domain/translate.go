package domain

const (
	// AutoDetect просит endpoint определить исходный язык самостоятельно
	AutoDetect = "auto"
	ModeHTML   = "html"
)

// TranslateRequest — JSON-тело запроса к endpoint'у перевода.
type TranslateRequest struct {
	Before string `json:"before"`
	After  string `json:"after"`
	Text   string `json:"text"`
	Mode   string `json:"mode"`
}

// TranslateResponse соответствует корневому JSON-объекту ответа.
type TranslateResponse struct {
	Request  *TranslateRequest `json:"request,omitempty"`
	Response TranslateResult   `json:"response"`
}

// TranslateResult — собственно результат перевода.
// Status is a pointer because older deployments of the endpoint omit it.
type TranslateResult struct {
	Status *bool  `json:"status,omitempty"`
	Result string `json:"result"`
	Text   string `json:"text,omitempty"`
}

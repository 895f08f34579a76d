package domain

// ChatRequest is the request body for the ideation chat endpoint.
type ChatRequest struct {
	Message     string `json:"message"`
	SessionName string `json:"sessionName,omitempty"`
	Language    string `json:"language,omitempty"`
}

// BusinessPlanRequest is the request body for the one-page business plan
// endpoint.
type BusinessPlanRequest struct {
	BusinessInfo string `json:"businessInfo"`
}

// Response is the envelope for non-streaming API responses. Message carries
// either a human-readable string or a document, alongside the status code.
type Response struct {
	Message interface{} `json:"message"`
	Code    int         `json:"code"`
}

package models

// These structs define the JSON payloads exchanged with HTTP clients and
// with the Cloud Workflow triggered after a document completes.

// UploadMetadata is the metadata block of an upload response.
type UploadMetadata struct {
	Metadata
	IsScanned bool `json:"is_scanned"`
}

// UploadResponse is returned by the upload endpoint on success.
type UploadResponse struct {
	Message        string         `json:"message"`
	FileID         string         `json:"file_id"`
	FilePath       string         `json:"file_path"`
	Metadata       UploadMetadata `json:"metadata"`
	Features       Features       `json:"features"`
	Decision       Decision       `json:"decision"`
	ProcessingType string         `json:"processing_type"`
	Model          string         `json:"model"`
	Results        string         `json:"results"`
}

// NewUploadResponse builds the upload response for a completed outcome.
func NewUploadResponse(o Outcome) UploadResponse {
	return UploadResponse{
		Message:  "File uploaded and processed successfully",
		FileID:   o.DocumentID,
		FilePath: o.FilePath,
		Metadata: UploadMetadata{
			Metadata:  o.Metadata,
			IsScanned: o.Features.IsScanned,
		},
		Features:       o.Features,
		Decision:       o.Decision,
		ProcessingType: o.Strategy,
		Model:          o.Model,
		Results:        o.Data,
	}
}

// ErrorResponse carries a failure reason back to the client.
type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// StatusResponse reports the current stage of a document.
type StatusResponse struct {
	FileID string `json:"file_id"`
	Status string `json:"status"`
}

// SetStatusResponse acknowledges a manual stage change.
type SetStatusResponse struct {
	Message string `json:"message"`
}

// AskRequest is a free-text question about a processed document.
type AskRequest struct {
	FileID   string `json:"file_id"`
	Question string `json:"question"`
}

// AskResponse is the answer to an AskRequest.
type AskResponse struct {
	FileID string `json:"file_id"`
	Model  string `json:"model"`
	Answer string `json:"answer"`
}

// HandoffPayload is the argument passed to the post-completion workflow.
type HandoffPayload struct {
	DocumentID string `json:"documentId"`
	FilePath   string `json:"filePath"`
	Decision   string `json:"decision"`
	Strategy   string `json:"strategy"`
	Model      string `json:"model"`
	PageCount  int    `json:"pageCount"`
}

// GCSEvent is the payload of a Cloud Storage object-finalized event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

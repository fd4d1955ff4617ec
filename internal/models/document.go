package models

import "time"

// Document is the Firestore record for one uploaded PDF. It mirrors the
// in-memory status and, once processing completes, the extracted content so
// that questions can be answered after a restart.
type Document struct {
	OriginalFilename string    `firestore:"originalFilename,omitempty"`
	Status           string    `firestore:"status,omitempty"`
	ErrorDetails     string    `firestore:"errorDetails,omitempty"`
	PageCount        int       `firestore:"pageCount,omitempty"`
	IsScanned        bool      `firestore:"isScanned"`
	FinancialTables  bool      `firestore:"financialTables"`
	LegalDocument    bool      `firestore:"legalDocument"`
	Strategy         string    `firestore:"strategy,omitempty"`
	Decision         string    `firestore:"decision,omitempty"`
	Model            string    `firestore:"model,omitempty"`
	Title            string    `firestore:"title,omitempty"`
	Author           string    `firestore:"author,omitempty"`
	Subject          string    `firestore:"subject,omitempty"`
	ExtractedText    string    `firestore:"extractedText,omitempty"`
	FilePath         string    `firestore:"filePath,omitempty"`
	CreatedAt        time.Time `firestore:"createdAt,omitempty"`
	UpdatedAt        time.Time `firestore:"updatedAt,omitempty"`
}

// Metadata is the descriptive information read from a PDF's info dictionary.
type Metadata struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Subject   string `json:"subject"`
	PageCount int    `json:"pages"`
}

// Features is the structural and content profile of one document. It is
// computed once per upload and never mutated.
type Features struct {
	PageCount               int  `json:"page_count"`
	IsScanned               bool `json:"is_scanned"`
	ContainsFinancialTables bool `json:"contains_financial_tables"`
	IsLegalDocument         bool `json:"is_legal_document"`
}

// ExtractionResult is what a backend produced for a document.
// Error is set iff Success is false.
type ExtractionResult struct {
	Success bool
	Model   string
	Data    string
	Error   string
}

// NoDataExtracted replaces empty backend output in an Outcome.
const NoDataExtracted = "No data extracted from document"

// Outcome summarises one successful processing run.
type Outcome struct {
	DocumentID string
	FilePath   string
	Metadata   Metadata
	Features   Features
	Decision   Decision
	Strategy   string
	Model      string
	Data       string
}

// Record converts an outcome into its Firestore representation. Status and
// ErrorDetails are left to the status journal.
func (o Outcome) Record(now time.Time) Document {
	return Document{
		OriginalFilename: o.DocumentID,
		PageCount:        o.Features.PageCount,
		IsScanned:        o.Features.IsScanned,
		FinancialTables:  o.Features.ContainsFinancialTables,
		LegalDocument:    o.Features.IsLegalDocument,
		Strategy:         o.Strategy,
		Decision:         o.Decision.String(),
		Model:            o.Model,
		Title:            o.Metadata.Title,
		Author:           o.Metadata.Author,
		Subject:          o.Metadata.Subject,
		ExtractedText:    o.Data,
		FilePath:         o.FilePath,
		UpdatedAt:        now,
	}
}

// OutcomeFromRecord is the inverse of Outcome.Record.
func OutcomeFromRecord(id string, d Document) Outcome {
	decision, _ := ParseDecision(d.Decision)
	return Outcome{
		DocumentID: id,
		FilePath:   d.FilePath,
		Metadata: Metadata{
			Title:     d.Title,
			Author:    d.Author,
			Subject:   d.Subject,
			PageCount: d.PageCount,
		},
		Features: Features{
			PageCount:               d.PageCount,
			IsScanned:               d.IsScanned,
			ContainsFinancialTables: d.FinancialTables,
			IsLegalDocument:         d.LegalDocument,
		},
		Decision: decision,
		Strategy: d.Strategy,
		Model:    d.Model,
		Data:     d.ExtractedText,
	}
}

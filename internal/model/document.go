package model

type DocumentKind string

const (
	DocumentKindPlainText = DocumentKind("txt")
	DocumentKindTabular   = DocumentKind("csv")
)

// GroundingDocument is the decoded form of an uploaded file. It is immutable
// and replaced wholesale when a new file is uploaded; Text is what gets
// inlined into grounded prompts.
type GroundingDocument struct {
	Name string
	Kind DocumentKind
	Raw  []byte
	Text string
}

package dto

type BatchStatus string

const (
	StatusSuccess          BatchStatus = "success"
	StatusNothingToCommit  BatchStatus = "nothing_to_commit"
	StatusReferenceMissing BatchStatus = "product_reference_missing"
	StatusPersistenceFault BatchStatus = "persistence_fault"
)

type BatchResult struct {
	BatchID            string      `json:"batch_id"`
	Status             BatchStatus `json:"status"`
	Received           int         `json:"received"`
	Committed          int         `json:"committed_count"`
	RejectedInvalid    int         `json:"rejected_invalid"`
	RejectedUnresolved int         `json:"rejected_unresolved"`
	RejectedAmbiguous  int         `json:"rejected_ambiguous"`
}

// ImportResponse is the body returned by the scan import endpoint.
type ImportResponse struct {
	*BatchResult
	Message string `json:"message"`
}

// Message renders a short human summary of a batch outcome.
func (r *BatchResult) Message() string {
	switch r.Status {
	case StatusSuccess:
		return "locations updated"
	case StatusNothingToCommit:
		return "no scan in the batch resolved to a known product"
	case StatusReferenceMissing:
		return "a resolved product no longer exists, batch rolled back"
	default:
		return "batch could not be stored, retry later"
	}
}

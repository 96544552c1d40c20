package models

type ClaimStatus string

const (
	ClaimStatusApproved      ClaimStatus = "approved"
	ClaimStatusRejected      ClaimStatus = "rejected"
	ClaimStatusPendingReview ClaimStatus = "pending_review"
)

type ClaimDecision struct {
	Status          ClaimStatus `json:"status"`
	Reason          string      `json:"reason"`
	ConfidenceScore float64     `json:"confidence_score"`
}

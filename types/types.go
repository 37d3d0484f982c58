package types

import (
	"time"

	"github.com/google/uuid"
)

// CollectionName is the fixed collection shared by the loader and the server.
// Both sides must address the same collection or queries run against an
// empty corpus.
const CollectionName = "insurance_claims"

// ClaimRecord is one row of the auto-insurance claims CSV. Values are kept
// as the source renders them; only age is numeric because the metadata
// stores it as an integer.
type ClaimRecord struct {
	PolicyNumber          string
	PolicyState           string
	PolicyAnnualPremium   string
	Age                   int
	InsuredSex            string
	InsuredOccupation     string
	InsuredEducationLevel string
	InsuredHobbies        string
	PolicyBindDate        string
	UmbrellaLimit         string
	IncidentDate          string
	IncidentHour          string
	IncidentCity          string
	IncidentState         string
	IncidentType          string
	IncidentSeverity      string
	VehiclesInvolved      string
	AuthoritiesContacted  string
	Witnesses             string
	PoliceReportAvailable string
	TotalClaimAmount      string
	InjuryClaim           string
	PropertyClaim         string
	VehicleClaim          string
	AutoMake              string
	AutoModel             string
	AutoYear              string
	FraudReported         string
}

// Chunk is the unit of storage and retrieval: one facet of one claim record.
type Chunk struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
}

// RetrievedChunk is a search hit, similarity in [0,1] descending by rank.
type RetrievedChunk struct {
	ID         string
	Content    string
	Metadata   map[string]any
	Similarity float64
}

type Collection struct {
	ID             uuid.UUID
	Name           string
	EmbeddingModel string
	CreatedAt      time.Time
}

type AnalysisResponse struct {
	Answer    string    `json:"answer"`
	Cases     int       `json:"cases"`
	Timestamp time.Time `json:"timestamp"`
}

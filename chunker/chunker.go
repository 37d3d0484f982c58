// Package chunker turns one claim record into the three facet chunks that
// get embedded and stored: policy/customer, incident, claim/vehicle.
package chunker

import (
	"fmt"

	"claimrag/types"
)

// ChunksPerRecord is fixed; retrieval ids and re-ingestion both rely on it.
const ChunksPerRecord = 3

// Build produces exactly three chunks for the record at the given index,
// ids "{index}_chunk1".."{index}_chunk3", all three carrying the same
// metadata map. Pure string formatting, never fails for a well-formed record.
func Build(index int, rec types.ClaimRecord) []types.Chunk {
	policy := fmt.Sprintf(
		"Policy number %s issued in state %s with annual premium $%s. "+
			"Customer is a %d-year-old %s working as %s, education level %s, hobbies include %s. "+
			"Policy started on %s and includes umbrella limit of $%s.",
		rec.PolicyNumber, rec.PolicyState, rec.PolicyAnnualPremium,
		rec.Age, rec.InsuredSex, rec.InsuredOccupation, rec.InsuredEducationLevel, rec.InsuredHobbies,
		rec.PolicyBindDate, rec.UmbrellaLimit,
	)

	incident := fmt.Sprintf(
		"Incident occurred on %s at %s:00 in %s, %s. "+
			"It involved a %s with %s severity. %s vehicle(s) involved. "+
			"Authorities contacted: %s. Witnesses: %s. Police report: %s.",
		rec.IncidentDate, rec.IncidentHour, rec.IncidentCity, rec.IncidentState,
		rec.IncidentType, rec.IncidentSeverity, rec.VehiclesInvolved,
		rec.AuthoritiesContacted, rec.Witnesses, rec.PoliceReportAvailable,
	)

	claim := fmt.Sprintf(
		"Claim filed for total amount $%s, including $%s injury claim, $%s property claim, "+
			"and $%s vehicle claim. Vehicle involved: %s %s %s. Suspected fraud: %s.",
		rec.TotalClaimAmount, rec.InjuryClaim, rec.PropertyClaim,
		rec.VehicleClaim, rec.AutoMake, rec.AutoModel, rec.AutoYear, rec.FraudReported,
	)

	metadata := Metadata(rec)

	contents := []string{policy, incident, claim}
	chunks := make([]types.Chunk, 0, ChunksPerRecord)
	for i, content := range contents {
		chunks = append(chunks, types.Chunk{
			ID:       fmt.Sprintf("%d_chunk%d", index, i+1),
			Content:  content,
			Metadata: metadata,
		})
	}
	return chunks
}

// Metadata is attached identically to all chunks of a record. It is meant
// for display enrichment and future filtered search, not for ranking.
func Metadata(rec types.ClaimRecord) map[string]any {
	return map[string]any{
		"policy_number":  rec.PolicyNumber,
		"incident_type":  rec.IncidentType,
		"incident_city":  rec.IncidentCity,
		"age":            rec.Age,
		"fraud_reported": rec.FraudReported,
	}
}

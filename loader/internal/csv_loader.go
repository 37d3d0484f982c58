// Package internal reads the claims CSV into typed records for ingestion.
package internal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"claimrag/types"
)

var requiredColumns = []string{
	"policy_number", "policy_state", "policy_annual_premium", "age",
	"insured_sex", "insured_occupation", "insured_education_level", "insured_hobbies",
	"policy_bind_date", "umbrella_limit",
	"incident_date", "incident_hour_of_the_day", "incident_city", "incident_state",
	"incident_type", "incident_severity", "number_of_vehicles_involved",
	"authorities_contacted", "witnesses", "police_report_available",
	"total_claim_amount", "injury_claim", "property_claim", "vehicle_claim",
	"auto_make", "auto_model", "auto_year", "fraud_reported",
}

// LoadClaims reads every record from the CSV at path. A missing required
// column or a non-integer age is a fatal ingestion error: the run fails as
// a whole, there is no row-level recovery.
func LoadClaims(path string) ([]types.ClaimRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open claims file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read claims file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("claims file %s has no header row", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("claims file missing column %q", name)
		}
	}

	records := make([]types.ClaimRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		field := func(name string) string { return row[cols[name]] }

		age, err := strconv.Atoi(field("age"))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid age %q: %w", n, field("age"), err)
		}

		records = append(records, types.ClaimRecord{
			PolicyNumber:          field("policy_number"),
			PolicyState:           field("policy_state"),
			PolicyAnnualPremium:   field("policy_annual_premium"),
			Age:                   age,
			InsuredSex:            field("insured_sex"),
			InsuredOccupation:     field("insured_occupation"),
			InsuredEducationLevel: field("insured_education_level"),
			InsuredHobbies:        field("insured_hobbies"),
			PolicyBindDate:        field("policy_bind_date"),
			UmbrellaLimit:         field("umbrella_limit"),
			IncidentDate:          field("incident_date"),
			IncidentHour:          field("incident_hour_of_the_day"),
			IncidentCity:          field("incident_city"),
			IncidentState:         field("incident_state"),
			IncidentType:          field("incident_type"),
			IncidentSeverity:      field("incident_severity"),
			VehiclesInvolved:      field("number_of_vehicles_involved"),
			AuthoritiesContacted:  field("authorities_contacted"),
			Witnesses:             field("witnesses"),
			PoliceReportAvailable: field("police_report_available"),
			TotalClaimAmount:      field("total_claim_amount"),
			InjuryClaim:           field("injury_claim"),
			PropertyClaim:         field("property_claim"),
			VehicleClaim:          field("vehicle_claim"),
			AutoMake:              field("auto_make"),
			AutoModel:             field("auto_model"),
			AutoYear:              field("auto_year"),
			FraudReported:         field("fraud_reported"),
		})
	}
	return records, nil
}

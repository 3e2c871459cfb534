package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fieldservice/reportgen/pkg/form"
	"github.com/fieldservice/reportgen/pkg/refdata"
)

// Decode maps a validated form record onto the typed service-report record.
// It assumes the record already passed the validation schema; a failure here
// is a descriptor/schema mismatch, not user input.
func Decode(record *form.Record, now time.Time) (ServiceReportRecord, error) {
	workHours, err := parseWorkHours(record.String("workHours"))
	if err != nil {
		return ServiceReportRecord{}, err
	}
	travelDistance, err := parseTravelDistance(record.String("travelDistance"))
	if err != nil {
		return ServiceReportRecord{}, err
	}

	out := ServiceReportRecord{
		Client:               record.String("client"),
		Representative:       record.String("representative"),
		Equipment:            record.String("equipment"),
		ProblemDescription:   record.String("problemDescription"),
		BeforePhotos:         append([]string(nil), record.Images("beforePhotos")...),
		AfterPhotos:          append([]string(nil), record.Images("afterPhotos")...),
		StandardProcedures:   populated(record.Strings("standardProcedures")),
		AdditionalProcedures: populated(record.Strings("additionalProcedures")),
		ReplacedParts:        decodeParts(record.Selections("replacedParts")),
		WorkHours:            workHours,
		TravelDistance:       travelDistance,
		Conclusions:          record.String("conclusions"),
		ClientSignature:      record.String("clientSignature"),
		EngineerSignature:    record.String("engineerSignature"),
		ReportID:             NewReportID(now),
		ServiceDate:          now,
		CreatedAt:            now,
		UpdatedAt:            now,
		Status:               StatusSubmitted,
	}
	return out, nil
}

// Enrich overwrites the foreign identifiers in the record with display values
// resolved from the fetched catalogs. All catalog fetches must have completed
// before calling; the renderer receives only resolved names.
func Enrich(record *ServiceReportRecord, refs refdata.Set) {
	clientID := refdata.ID(record.Client)
	record.Client = refs.Clients.Label(clientID)
	record.Contact = refs.Clients.Meta(clientID, "contact")

	equipmentID := refdata.ID(record.Equipment)
	record.Equipment = refs.Equipment.Label(equipmentID)
	record.SerialNumber = refs.Equipment.Meta(equipmentID, "serialNumber")
	record.ContractNumber = refs.Equipment.Meta(equipmentID, "contract")

	for i, procedure := range record.StandardProcedures {
		record.StandardProcedures[i] = refs.Procedures.Label(refdata.ID(procedure))
	}

	for i, part := range record.ReplacedParts {
		id := refdata.ID(part.Description)
		if entry, ok := refs.Parts.Lookup(id); ok {
			record.ReplacedParts[i].Description = entry.Label
			record.ReplacedParts[i].PartNumber = entry.Meta["partNumber"]
		}
	}
}

func decodeParts(selections []form.PartSelection) []ReplacedPart {
	out := make([]ReplacedPart, 0, len(selections))
	for _, selection := range selections {
		if selection.Part.Empty() {
			continue
		}
		selection = selection.Normalize()
		out = append(out, ReplacedPart{
			// Description carries the raw identifier until enrichment
			// resolves the display name and part number.
			Description: string(selection.Part),
			Quantity:    selection.Quantity,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func populated(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		out = append(out, value)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseWorkHours(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("report: work hours %q did not pass validation: %w", raw, err)
	}
	return value, nil
}

func parseTravelDistance(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("report: travel distance %q did not pass validation: %w", raw, err)
	}
	return value, nil
}

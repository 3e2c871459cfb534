// Package report defines the finalized service-report record, its form
// descriptor and validation schema, and the enrichment step that swaps
// reference identifiers for display names before document rendering.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status tracks a report through its lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
)

// Valid reports whether the status belongs to the known set.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusCompleted:
		return true
	default:
		return false
	}
}

// ReplacedPart is one consumed part: the structured shape, never a flat
// string.
type ReplacedPart struct {
	PartNumber  string `json:"partNumber"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
}

// ServiceReportRecord is the finalized, validated record one service
// intervention produces. Client, Equipment and part references hold foreign
// identifiers until Enrich overwrites them with resolved display values; the
// document renderer never fetches data itself.
type ServiceReportRecord struct {
	// Identity and context.
	Client         string `json:"client"`
	Representative string `json:"representative"`
	Equipment      string `json:"equipment"`
	SerialNumber   string `json:"serialNumber,omitempty"`
	ContractNumber string `json:"contractNumber,omitempty"`
	Contact        string `json:"contact,omitempty"`

	ProblemDescription string `json:"problemDescription"`

	// Evidence.
	BeforePhotos []string `json:"beforePhotos,omitempty"`
	AfterPhotos  []string `json:"afterPhotos,omitempty"`

	// Work performed.
	StandardProcedures   []string `json:"standardProcedures"`
	AdditionalProcedures []string `json:"additionalProcedures,omitempty"`

	// Consumption.
	ReplacedParts   []ReplacedPart `json:"replacedParts,omitempty"`
	ConsumptionNote string         `json:"consumptionNote,omitempty"`

	// Metrics.
	WorkHours      float64 `json:"workHours"`
	TravelDistance int     `json:"travelDistance"`

	// Closure.
	Conclusions       string `json:"conclusions"`
	ClientSignature   string `json:"clientSignature"`
	EngineerSignature string `json:"engineerSignature"`

	// Metadata.
	ReportID    string    `json:"reportId,omitempty"`
	ServiceDate time.Time `json:"serviceDate,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
	Status      Status    `json:"status,omitempty"`
}

// NewReportID mints a report identifier of the form SRV-<yyyymmdd>-<frag>.
func NewReportID(now time.Time) string {
	frag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("SRV-%s-%s", now.Format("20060102"), frag)
}

// Filename derives the suggested download name from the client display name
// and the given date.
func Filename(client string, now time.Time) string {
	client = strings.TrimSpace(client)
	if client == "" {
		client = "report"
	}
	return fmt.Sprintf("service-report-%s-%s.pdf", client, now.Format("2006-01-02"))
}

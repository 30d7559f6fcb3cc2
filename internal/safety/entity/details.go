package entity

// DocumentDetails is the tagged union of type-specific document content.
// Each variant carries only its own fields; the shared envelope lives on
// BaseDocument.
type DocumentDetails interface {
	DocumentType() string
}

// CheckItem single checklist entry
type CheckItem struct {
	ID      string `json:"id,omitempty"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
	Note    string `json:"note,omitempty"`
}

// DailyChecklistDetails daily safety checklist
type DailyChecklistDetails struct {
	CheckItems []CheckItem `json:"checkItems"`
}

func (DailyChecklistDetails) DocumentType() string { return DocumentTypeDailyChecklist }

// WeeklyChecklistDetails weekly safety checklist
type WeeklyChecklistDetails struct {
	WeekOf     string      `json:"weekOf,omitempty"`
	CheckItems []CheckItem `json:"checkItems"`
}

func (WeeklyChecklistDetails) DocumentType() string { return DocumentTypeWeeklyChecklist }

// KPI quarterly report indicator
type KPI struct {
	Name   string  `json:"name"`
	Target float64 `json:"target"`
	Actual float64 `json:"actual"`
	Unit   string  `json:"unit,omitempty"`
}

// QuarterlyReportDetails quarterly safety report
type QuarterlyReportDetails struct {
	Quarter      string `json:"quarter,omitempty"`
	KPIs         []KPI  `json:"kpis"`
	BudgetStatus string `json:"budgetStatus,omitempty"`
	Summary      string `json:"summary,omitempty"`
}

func (QuarterlyReportDetails) DocumentType() string { return DocumentTypeQuarterlyReport }

// InspectionFinding single inspection finding
type InspectionFinding struct {
	Severity         string `json:"severity"`
	Description      string `json:"description"`
	CorrectiveAction string `json:"correctiveAction,omitempty"`
}

// SafetyInspectionDetails site safety inspection
type SafetyInspectionDetails struct {
	Location string              `json:"location,omitempty"`
	Findings []InspectionFinding `json:"findings"`
}

func (SafetyInspectionDetails) DocumentType() string { return DocumentTypeSafetyInspection }

// EducationLogDetails completed education session log
type EducationLogDetails struct {
	CourseName  string   `json:"courseName,omitempty"`
	Hours       float64  `json:"hours,omitempty"`
	Attendees   []string `json:"attendees,omitempty"`
	CompletedAt string   `json:"completedAt,omitempty"`
}

func (EducationLogDetails) DocumentType() string { return DocumentTypeEducationLog }

// Hazard identified hazard within a risk assessment
type Hazard struct {
	Description string   `json:"description"`
	Likelihood  int      `json:"likelihood,omitempty"`
	Severity    int      `json:"severity,omitempty"`
	Controls    []string `json:"controls,omitempty"`
}

// RiskAssessmentDetails risk assessment document
type RiskAssessmentDetails struct {
	RiskLevel string   `json:"riskLevel,omitempty"`
	Hazards   []Hazard `json:"hazards"`
}

func (RiskAssessmentDetails) DocumentType() string { return DocumentTypeRiskAssessment }

// JHAStep single job hazard analysis step
type JHAStep struct {
	Sequence    int      `json:"sequence"`
	Description string   `json:"description"`
	Hazards     []string `json:"hazards,omitempty"`
	Controls    []string `json:"controls,omitempty"`
}

// JHADetails job hazard analysis
type JHADetails struct {
	JobName string    `json:"jobName,omitempty"`
	Steps   []JHAStep `json:"steps"`
}

func (JHADetails) DocumentType() string { return DocumentTypeJHA }

// ChemicalUsageDetails chemical usage report
type ChemicalUsageDetails struct {
	ChemicalName    string  `json:"chemicalName,omitempty"`
	CASNumber       string  `json:"casNumber,omitempty"`
	Quantity        float64 `json:"quantity,omitempty"`
	Unit            string  `json:"unit,omitempty"`
	StorageLocation string  `json:"storageLocation,omitempty"`
}

func (ChemicalUsageDetails) DocumentType() string { return DocumentTypeChemicalUsage }

// ExperimentPlanDetails experiment plan
type ExperimentPlanDetails struct {
	Objective      string   `json:"objective,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	EndDate        string   `json:"endDate,omitempty"`
	Materials      []string `json:"materials,omitempty"`
	SafetyMeasures []string `json:"safetyMeasures,omitempty"`
}

func (ExperimentPlanDetails) DocumentType() string { return DocumentTypeExperimentPlan }

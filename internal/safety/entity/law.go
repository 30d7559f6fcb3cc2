package entity

// LawRequirement static mapping between a document type and the legal article
// that mandates it. The table is fixed at build time; compliance status is
// derived by joining it against live document activity.
type LawRequirement struct {
	LawID          string `json:"law_id"`
	LawName        string `json:"law_name"`
	ArticleID      string `json:"article_id"`
	ArticleTitle   string `json:"article_title"`
	DocumentType   string `json:"document_type"`
	Relevance      string `json:"relevance"`
	ComplianceType string `json:"compliance_type"`
	// CycleDays how often the obligation recurs; 0 means one-off.
	CycleDays int `json:"cycle_days"`
}

// Relevance levels
const (
	RelevanceHigh   = "high"
	RelevanceMedium = "medium"
	RelevanceLow    = "low"
)

// Compliance types
const (
	ComplianceTypeDocument   = "document"
	ComplianceTypeEducation  = "education"
	ComplianceTypeInspection = "inspection"
)

// lawRequirements is the static law-mapping table keyed by document type.
var lawRequirements = map[string][]LawRequirement{
	DocumentTypeDailyChecklist: {
		{LawID: "lsa", LawName: "Laboratory Safety Act", ArticleID: "lsa-14", ArticleTitle: "Daily safety inspection of laboratories", DocumentType: DocumentTypeDailyChecklist, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeInspection, CycleDays: 1},
	},
	DocumentTypeWeeklyChecklist: {
		{LawID: "osha", LawName: "Occupational Safety and Health Act", ArticleID: "osha-36", ArticleTitle: "Periodic workplace inspection", DocumentType: DocumentTypeWeeklyChecklist, Relevance: RelevanceMedium, ComplianceType: ComplianceTypeInspection, CycleDays: 7},
	},
	DocumentTypeQuarterlyReport: {
		{LawID: "lsa", LawName: "Laboratory Safety Act", ArticleID: "lsa-18", ArticleTitle: "Quarterly safety status report", DocumentType: DocumentTypeQuarterlyReport, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeDocument, CycleDays: 90},
		{LawID: "osha", LawName: "Occupational Safety and Health Act", ArticleID: "osha-24", ArticleTitle: "Safety and health committee review", DocumentType: DocumentTypeQuarterlyReport, Relevance: RelevanceMedium, ComplianceType: ComplianceTypeDocument, CycleDays: 90},
	},
	DocumentTypeSafetyInspection: {
		{LawID: "lsa", LawName: "Laboratory Safety Act", ArticleID: "lsa-15", ArticleTitle: "Regular and special safety inspections", DocumentType: DocumentTypeSafetyInspection, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeInspection, CycleDays: 180},
	},
	DocumentTypeEducationLog: {
		{LawID: "lsa", LawName: "Laboratory Safety Act", ArticleID: "lsa-20", ArticleTitle: "Safety education and training of researchers", DocumentType: DocumentTypeEducationLog, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeEducation, CycleDays: 90},
	},
	DocumentTypeRiskAssessment: {
		{LawID: "osha", LawName: "Occupational Safety and Health Act", ArticleID: "osha-36-2", ArticleTitle: "Risk assessment of hazardous work", DocumentType: DocumentTypeRiskAssessment, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeDocument, CycleDays: 365},
		{LawID: "lsa", LawName: "Laboratory Safety Act", ArticleID: "lsa-19", ArticleTitle: "Pre-experiment hazard analysis", DocumentType: DocumentTypeRiskAssessment, Relevance: RelevanceMedium, ComplianceType: ComplianceTypeDocument, CycleDays: 365},
	},
	DocumentTypeJHA: {
		{LawID: "osha", LawName: "Occupational Safety and Health Act", ArticleID: "osha-38", ArticleTitle: "Job hazard analysis for high-risk tasks", DocumentType: DocumentTypeJHA, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeDocument, CycleDays: 365},
	},
	DocumentTypeChemicalUsage: {
		{LawID: "csca", LawName: "Chemical Substances Control Act", ArticleID: "csca-11", ArticleTitle: "Chemical usage reporting", DocumentType: DocumentTypeChemicalUsage, Relevance: RelevanceHigh, ComplianceType: ComplianceTypeDocument, CycleDays: 30},
		{LawID: "csca", LawName: "Chemical Substances Control Act", ArticleID: "csca-19", ArticleTitle: "Hazardous substance inventory", DocumentType: DocumentTypeChemicalUsage, Relevance: RelevanceLow, ComplianceType: ComplianceTypeDocument, CycleDays: 30},
	},
	// Experiment plans are internal policy, not legally mandated: zero
	// mappings on purpose so compliance resolves to "unknown".
	DocumentTypeExperimentPlan: {},
}

// LawRequirementsFor returns the legal requirements mapped to a document type.
func LawRequirementsFor(docType string) []LawRequirement {
	return lawRequirements[docType]
}

// AllLawRequirements returns the whole static table in document-type order.
func AllLawRequirements() []LawRequirement {
	var all []LawRequirement
	for _, t := range AllDocumentTypes() {
		all = append(all, lawRequirements[t]...)
	}
	return all
}

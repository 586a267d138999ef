package auth

const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
)

const (
	PermCompanyRead        = "company.read"
	PermCompanyWrite       = "company.write"
	PermCompaniesList      = "company.list"
	PermExpenseTypesWrite  = "expense_types.write"
	PermProfessionalsRead  = "professionals.read"
	PermProfessionalsWrite = "professionals.write"
	PermFleetRead          = "fleet.read"
	PermFleetWrite         = "fleet.write"
	PermJobsRead           = "jobs.read"
	PermJobsWrite          = "jobs.write"
	PermReportsRead        = "reports.read"
	PermParamsWrite        = "params.write"
	PermRateRefresh        = "params.rate_refresh"
	PermAuditRead          = "audit.read"
	PermMetricsRead        = "metrics.read"
)

var DefaultPermissions = []string{
	PermCompanyRead,
	PermCompanyWrite,
	PermCompaniesList,
	PermExpenseTypesWrite,
	PermProfessionalsRead,
	PermProfessionalsWrite,
	PermFleetRead,
	PermFleetWrite,
	PermJobsRead,
	PermJobsWrite,
	PermReportsRead,
	PermParamsWrite,
	PermRateRefresh,
	PermAuditRead,
	PermMetricsRead,
}

var professionalPermissions = []string{
	PermCompanyRead,
	PermCompanyWrite,
	PermProfessionalsRead,
	PermProfessionalsWrite,
	PermFleetRead,
	PermFleetWrite,
	PermJobsRead,
	PermJobsWrite,
	PermReportsRead,
}

// RolePermissions is seeded into role_permissions at start-up.
var RolePermissions = map[string][]string{
	RoleProfessional: professionalPermissions,
	RoleAdmin:        DefaultPermissions,
}

package auth

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

const (
	PermOrgRead           = "org.read"
	PermOrgSync           = "org.sync"
	PermInteractionsWrite = "interactions.write"
	PermRankingsRead      = "rankings.read"
	PermRankingsRecompute = "rankings.recompute"
	PermFeedbackRead      = "feedback.read"
	PermFeedbackWrite     = "feedback.write"
	PermCyclesManage      = "cycles.manage"
	PermReportsRead       = "reports.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermOrgRead,
	PermOrgSync,
	PermInteractionsWrite,
	PermRankingsRead,
	PermRankingsRecompute,
	PermFeedbackRead,
	PermFeedbackWrite,
	PermCyclesManage,
	PermReportsRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermOrgRead,
		PermInteractionsWrite,
		PermRankingsRead,
		PermFeedbackRead,
		PermFeedbackWrite,
	},
	RoleManager: {
		PermOrgRead,
		PermInteractionsWrite,
		PermRankingsRead,
		PermFeedbackRead,
		PermFeedbackWrite,
		PermReportsRead,
	},
	RoleAdmin: {
		PermOrgRead,
		PermOrgSync,
		PermInteractionsWrite,
		PermRankingsRead,
		PermRankingsRecompute,
		PermFeedbackRead,
		PermFeedbackWrite,
		PermCyclesManage,
		PermReportsRead,
		PermSystemAdmin,
	},
}

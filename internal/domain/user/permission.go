package user

type Permission string

const (
	// Payroll
	PermissionPayrollView    Permission = "payroll.view"
	PermissionPayrollProcess Permission = "payroll.process"
	PermissionPayrollPreview Permission = "payroll.preview"

	// Compensation
	PermissionCompensationView   Permission = "compensation.view"
	PermissionCompensationManage Permission = "compensation.manage"
)

// RolePermissions maps roles to their permissions. Payroll code never
// branches on roles; only the HTTP layer consults this table.
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		// Owner has all permissions
		PermissionPayrollView,
		PermissionPayrollProcess,
		PermissionPayrollPreview,
		PermissionCompensationView,
		PermissionCompensationManage,
	},
	RoleAccounts: {
		PermissionPayrollView,
		PermissionPayrollProcess,
		PermissionPayrollPreview,
		PermissionCompensationView,
		PermissionCompensationManage,
	},
	RoleManager: {
		PermissionPayrollView,
		PermissionPayrollPreview,
		PermissionCompensationView,
	},
	RoleEmployee: {},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}

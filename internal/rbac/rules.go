package rbac

// Simple default policy. Expand as needed.
var RolePermissions = map[string][]string{
	"family": {
		"student:list",
		"student:view",
		"report:view",
		"report:export",
		"rules:view",
		"recent:*",
		"user:change_password",
	},
	"clinician": {
		"student:*",
		"report:*", // includes report:clinician
		"rules:view",
		"recent:*",
		"dataset:view",
		"dataset:upload",
		"user:change_password",
	},
	"admin": {
		"*", // everything
	},
}
